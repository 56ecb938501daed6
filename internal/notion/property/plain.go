package property

// Plain collapses a property value into a plain scalar or list so change
// history stays human-readable. It accepts typed Values as well as the raw
// decoded JSON shapes Notion returns (map[string]any / []any).
//
// The conversion is lossy: multi-segment text keeps only its first segment,
// links are dropped, and date ranges keep only their start.
func Plain(v any) any {
	switch p := v.(type) {
	case nil:
		return nil
	case Title:
		return firstSegment(p.Segments)
	case RichText:
		return firstSegment(p.Segments)
	case Select:
		if p.Name == "" {
			return nil
		}
		return p.Name
	case MultiSelect:
		return append([]string{}, p.Names...)
	case Number:
		if p.Value == nil {
			return nil
		}
		return *p.Value
	case Date:
		if p.Start == "" {
			return nil
		}
		return p.Start
	case Relation:
		return append([]string{}, p.IDs...)
	case Checkbox:
		return p.Checked
	case Unsupported:
		return string(p.Raw)
	case map[string]any:
		return plainMap(p)
	case []any:
		return plainList(p)
	case int:
		return float64(p)
	case int64:
		return float64(p)
	default:
		return v
	}
}

// PlainBag normalizes every value of a bag.
func PlainBag(b Bag) map[string]any {
	out := make(map[string]any, len(b))
	for k, v := range b {
		out[k] = Plain(v)
	}
	return out
}

func firstSegment(segs []Segment) string {
	if len(segs) == 0 {
		return ""
	}
	return segs[0].PlainText
}

func plainMap(m map[string]any) any {
	if t, ok := m["type"].(string); ok {
		if inner, present := m[t]; present {
			return Plain(inner)
		}
	}
	if name, ok := m["name"]; ok {
		return name
	}
	if text, ok := m["plain_text"]; ok {
		return text
	}
	if start, ok := m["start"]; ok {
		return start
	}
	if id, ok := m["id"]; ok {
		return id
	}
	return m
}

func plainList(l []any) any {
	if len(l) == 0 {
		return []any{}
	}
	if first, ok := l[0].(map[string]any); ok && isTextSegment(first) {
		return plainMap(first)
	}
	out := make([]any, 0, len(l))
	for _, item := range l {
		out = append(out, Plain(item))
	}
	return out
}

func isTextSegment(m map[string]any) bool {
	if _, ok := m["plain_text"]; ok {
		return true
	}
	_, ok := m["text"]
	return ok
}
