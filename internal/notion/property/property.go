// Package property models Notion property values as a closed set of typed
// variants with explicit encode/decode to the Notion JSON wire format.
//
// A page's properties are a Bag keyed by display name. On the wire each value
// is wrapped in its type tag:
//
//	{"Status": {"type": "select", "select": {"name": "Backlog"}}}
//
// Decoding keeps unknown property types as Unsupported so a bag read from the
// API never silently loses data; Unsupported values are skipped on encode.
package property

import "strings"

// Kind is the Notion property type tag.
type Kind string

// Supported property kinds.
const (
	KindTitle       Kind = "title"
	KindRichText    Kind = "rich_text"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multi_select"
	KindNumber      Kind = "number"
	KindDate        Kind = "date"
	KindRelation    Kind = "relation"
	KindCheckbox    Kind = "checkbox"
)

// Value is implemented by every property variant.
type Value interface {
	Kind() Kind
	isValue()
}

// Segment is one run of rich text.
type Segment struct {
	PlainText string
	Href      string
}

// Title is the page title property. Every database has exactly one.
type Title struct {
	Segments []Segment
}

// RichText is a multi-segment text property.
type RichText struct {
	Segments []Segment
}

// Select is a single-choice property. An empty Name means no option is set.
type Select struct {
	Name string
}

// MultiSelect is a multi-choice property.
type MultiSelect struct {
	Names []string
}

// Number is a numeric property. A nil Value means the cell is empty.
type Number struct {
	Value *float64
}

// Date is a date or date range property. Start and End are ISO 8601 strings
// as Notion sends them; an empty Start means the cell is empty.
type Date struct {
	Start string
	End   string
}

// Relation links to other pages by ID, in order.
type Relation struct {
	IDs []string
}

// Checkbox is a boolean property.
type Checkbox struct {
	Checked bool
}

// Unsupported holds a property of a type this package does not model.
type Unsupported struct {
	Type Kind
	Raw  []byte
}

func (Title) Kind() Kind         { return KindTitle }
func (RichText) Kind() Kind      { return KindRichText }
func (Select) Kind() Kind        { return KindSelect }
func (MultiSelect) Kind() Kind   { return KindMultiSelect }
func (Number) Kind() Kind        { return KindNumber }
func (Date) Kind() Kind          { return KindDate }
func (Relation) Kind() Kind      { return KindRelation }
func (Checkbox) Kind() Kind      { return KindCheckbox }
func (u Unsupported) Kind() Kind { return u.Type }

func (Title) isValue()       {}
func (RichText) isValue()    {}
func (Select) isValue()      {}
func (MultiSelect) isValue() {}
func (Number) isValue()      {}
func (Date) isValue()        {}
func (Relation) isValue()    {}
func (Checkbox) isValue()    {}
func (Unsupported) isValue() {}

// NewTitle returns a single-segment title.
func NewTitle(s string) Title {
	return Title{Segments: segmentsOf(s)}
}

// NewRichText returns a single-segment rich text value.
func NewRichText(s string) RichText {
	return RichText{Segments: segmentsOf(s)}
}

// NewSelect returns a select value.
func NewSelect(name string) Select {
	return Select{Name: name}
}

// NewMultiSelect returns a multi-select value.
func NewMultiSelect(names ...string) MultiSelect {
	return MultiSelect{Names: names}
}

// NewNumber returns a non-empty number value.
func NewNumber(f float64) Number {
	return Number{Value: &f}
}

// NewDate returns a date value with no end.
func NewDate(start string) Date {
	return Date{Start: start}
}

// NewRelation returns a relation to the given page IDs.
func NewRelation(ids ...string) Relation {
	return Relation{IDs: ids}
}

// NewCheckbox returns a checkbox value.
func NewCheckbox(checked bool) Checkbox {
	return Checkbox{Checked: checked}
}

func segmentsOf(s string) []Segment {
	if s == "" {
		return nil
	}
	return []Segment{{PlainText: s}}
}

// PlainText joins every segment of a Title or RichText.
func (t Title) PlainText() string { return joinSegments(t.Segments) }

// PlainText joins every segment of a RichText.
func (t RichText) PlainText() string { return joinSegments(t.Segments) }

func joinSegments(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.PlainText)
	}
	return b.String()
}

// Bag is a page's property set keyed by display name.
type Bag map[string]Value

// Text returns the full plain text of a title or rich_text property,
// or "" when absent or of another kind.
func (b Bag) Text(name string) string {
	switch v := b[name].(type) {
	case Title:
		return v.PlainText()
	case RichText:
		return v.PlainText()
	default:
		return ""
	}
}

// SelectName returns the option name of a select property, or "".
func (b Bag) SelectName(name string) string {
	if v, ok := b[name].(Select); ok {
		return v.Name
	}
	return ""
}

// MultiSelectNames returns the option names of a multi_select property.
func (b Bag) MultiSelectNames(name string) []string {
	if v, ok := b[name].(MultiSelect); ok {
		return v.Names
	}
	return nil
}

// Number returns the value of a number property, or nil when empty or absent.
func (b Bag) Number(name string) *float64 {
	if v, ok := b[name].(Number); ok && v.Value != nil {
		f := *v.Value
		return &f
	}
	return nil
}

// RelationIDs returns the related page IDs in order.
func (b Bag) RelationIDs(name string) []string {
	if v, ok := b[name].(Relation); ok {
		return v.IDs
	}
	return nil
}

// DateStart returns the start of a date property, or "".
func (b Bag) DateStart(name string) string {
	if v, ok := b[name].(Date); ok {
		return v.Start
	}
	return ""
}

// TitleText returns the text of whichever property holds the page title.
func (b Bag) TitleText() string {
	for _, v := range b {
		if t, ok := v.(Title); ok {
			return t.PlainText()
		}
	}
	return ""
}

// Clone returns a shallow copy of the bag. Values are immutable in practice,
// so sharing them between bags is safe.
func (b Bag) Clone() Bag {
	out := make(Bag, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Merge returns a copy of b with every entry of updates applied over it.
func (b Bag) Merge(updates Bag) Bag {
	out := b.Clone()
	for k, v := range updates {
		out[k] = v
	}
	return out
}
