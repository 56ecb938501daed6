package property

import (
	"encoding/json"
	"fmt"
	"sort"

	nferrors "github.com/mrz1836/notionflow/internal/errors"
)

type wireText struct {
	Type      string        `json:"type,omitempty"`
	Text      *wireTextBody `json:"text,omitempty"`
	PlainText string        `json:"plain_text,omitempty"`
	Href      *string       `json:"href,omitempty"`
}

type wireTextBody struct {
	Content string    `json:"content"`
	Link    *wireLink `json:"link,omitempty"`
}

type wireLink struct {
	URL string `json:"url"`
}

type wireOption struct {
	Name string `json:"name"`
}

type wireDate struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

type wireRelation struct {
	ID string `json:"id"`
}

// wireProperty is the union of every supported payload. Only the field
// matching Type is meaningful.
type wireProperty struct {
	Type        Kind           `json:"type"`
	Title       []wireText     `json:"title"`
	RichText    []wireText     `json:"rich_text"`
	Select      *wireOption    `json:"select"`
	MultiSelect []wireOption   `json:"multi_select"`
	Number      *float64       `json:"number"`
	Date        *wireDate      `json:"date"`
	Relation    []wireRelation `json:"relation"`
	Checkbox    bool           `json:"checkbox"`
}

// Unmarshal decodes one type-tagged property value.
func Unmarshal(data []byte) (Value, error) {
	var w wireProperty
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, nferrors.Wrap(nferrors.ErrPropertyType, err.Error())
	}

	switch w.Type {
	case KindTitle:
		return Title{Segments: decodeSegments(w.Title)}, nil
	case KindRichText:
		return RichText{Segments: decodeSegments(w.RichText)}, nil
	case KindSelect:
		if w.Select == nil {
			return Select{}, nil
		}
		return Select{Name: w.Select.Name}, nil
	case KindMultiSelect:
		names := make([]string, 0, len(w.MultiSelect))
		for _, o := range w.MultiSelect {
			names = append(names, o.Name)
		}
		return MultiSelect{Names: names}, nil
	case KindNumber:
		return Number{Value: w.Number}, nil
	case KindDate:
		if w.Date == nil {
			return Date{}, nil
		}
		d := Date{Start: w.Date.Start}
		if w.Date.End != nil {
			d.End = *w.Date.End
		}
		return d, nil
	case KindRelation:
		ids := make([]string, 0, len(w.Relation))
		for _, r := range w.Relation {
			ids = append(ids, r.ID)
		}
		return Relation{IDs: ids}, nil
	case KindCheckbox:
		return Checkbox{Checked: w.Checkbox}, nil
	case "":
		return nil, nferrors.Wrap(nferrors.ErrPropertyType, "property value has no type tag")
	default:
		raw := make([]byte, len(data))
		copy(raw, data)
		return Unsupported{Type: w.Type, Raw: raw}, nil
	}
}

func decodeSegments(in []wireText) []Segment {
	if len(in) == 0 {
		return nil
	}
	out := make([]Segment, 0, len(in))
	for _, t := range in {
		seg := Segment{PlainText: t.PlainText}
		if seg.PlainText == "" && t.Text != nil {
			seg.PlainText = t.Text.Content
		}
		if t.Href != nil {
			seg.Href = *t.Href
		} else if t.Text != nil && t.Text.Link != nil {
			seg.Href = t.Text.Link.URL
		}
		out = append(out, seg)
	}
	return out
}

func encodeSegments(in []Segment) []wireText {
	out := make([]wireText, 0, len(in))
	for _, s := range in {
		body := &wireTextBody{Content: s.PlainText}
		if s.Href != "" {
			body.Link = &wireLink{URL: s.Href}
		}
		out = append(out, wireText{Type: "text", Text: body})
	}
	return out
}

// Marshal encodes one property value wrapped in its type tag, in the shape the
// Notion API accepts on page create and update.
func Marshal(v Value) ([]byte, error) {
	payload, err := encodeValue(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{
		"type":           v.Kind(),
		string(v.Kind()): payload,
	})
}

func encodeValue(v Value) (any, error) {
	switch p := v.(type) {
	case Title:
		return encodeSegments(p.Segments), nil
	case RichText:
		return encodeSegments(p.Segments), nil
	case Select:
		if p.Name == "" {
			return nil, nil
		}
		return wireOption{Name: p.Name}, nil
	case MultiSelect:
		opts := make([]wireOption, 0, len(p.Names))
		for _, n := range p.Names {
			opts = append(opts, wireOption{Name: n})
		}
		return opts, nil
	case Number:
		return p.Value, nil
	case Date:
		if p.Start == "" {
			return nil, nil
		}
		d := wireDate{Start: p.Start}
		if p.End != "" {
			end := p.End
			d.End = &end
		}
		return d, nil
	case Relation:
		rels := make([]wireRelation, 0, len(p.IDs))
		for _, id := range p.IDs {
			rels = append(rels, wireRelation{ID: id})
		}
		return rels, nil
	case Checkbox:
		return p.Checked, nil
	default:
		return nil, nferrors.Wrapf(nferrors.ErrPropertyType, "cannot encode property of type %q", v.Kind())
	}
}

// MarshalJSON encodes the bag as a Notion properties object. Unsupported
// values are omitted since the API would reject them on write.
func (b Bag) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(b))
	for name, v := range b {
		if v == nil {
			continue
		}
		if _, ok := v.(Unsupported); ok {
			continue
		}
		raw, err := Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		out[name] = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a Notion properties object.
func (b *Bag) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nferrors.Wrap(nferrors.ErrPropertyType, err.Error())
	}
	out := make(Bag, len(raw))
	for name, r := range raw {
		v, err := Unmarshal(r)
		if err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		out[name] = v
	}
	*b = out
	return nil
}

// Names returns the bag's property names sorted, for deterministic iteration.
func (b Bag) Names() []string {
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
