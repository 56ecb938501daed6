package property

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nferrors "github.com/mrz1836/notionflow/internal/errors"
)

func TestUnmarshal_Variants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		json string
		want Value
	}{
		{
			name: "title prefers plain_text",
			json: `{"type":"title","title":[{"type":"text","text":{"content":"raw"},"plain_text":"Write docs"}]}`,
			want: Title{Segments: []Segment{{PlainText: "Write docs"}}},
		},
		{
			name: "rich text falls back to content",
			json: `{"type":"rich_text","rich_text":[{"type":"text","text":{"content":"a","link":{"url":"https://x"}}},{"plain_text":"b"}]}`,
			want: RichText{Segments: []Segment{{PlainText: "a", Href: "https://x"}, {PlainText: "b"}}},
		},
		{
			name: "select",
			json: `{"type":"select","select":{"id":"1","name":"High","color":"red"}}`,
			want: Select{Name: "High"},
		},
		{
			name: "empty select",
			json: `{"type":"select","select":null}`,
			want: Select{},
		},
		{
			name: "multi select",
			json: `{"type":"multi_select","multi_select":[{"name":"go"},{"name":"api"}]}`,
			want: MultiSelect{Names: []string{"go", "api"}},
		},
		{
			name: "empty number",
			json: `{"type":"number","number":null}`,
			want: Number{},
		},
		{
			name: "date range",
			json: `{"type":"date","date":{"start":"2024-01-01","end":"2024-01-05"}}`,
			want: Date{Start: "2024-01-01", End: "2024-01-05"},
		},
		{
			name: "relation keeps order",
			json: `{"type":"relation","relation":[{"id":"b"},{"id":"a"}],"has_more":false}`,
			want: Relation{IDs: []string{"b", "a"}},
		},
		{
			name: "checkbox",
			json: `{"type":"checkbox","checkbox":true}`,
			want: Checkbox{Checked: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Unmarshal([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshal_NumberValue(t *testing.T) {
	t.Parallel()

	got, err := Unmarshal([]byte(`{"type":"number","number":2.5}`))
	require.NoError(t, err)
	n, ok := got.(Number)
	require.True(t, ok)
	require.NotNil(t, n.Value)
	assert.InDelta(t, 2.5, *n.Value, 0.0001)
}

func TestUnmarshal_UnknownTypeIsKept(t *testing.T) {
	t.Parallel()

	got, err := Unmarshal([]byte(`{"type":"formula","formula":{"type":"string","string":"x"}}`))
	require.NoError(t, err)
	u, ok := got.(Unsupported)
	require.True(t, ok)
	assert.Equal(t, Kind("formula"), u.Kind())
	assert.Contains(t, string(u.Raw), `"formula"`)
}

func TestUnmarshal_MissingType(t *testing.T) {
	t.Parallel()

	_, err := Unmarshal([]byte(`{"select":{"name":"x"}}`))
	require.ErrorIs(t, err, nferrors.ErrPropertyType)
}

func TestMarshal_WireShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"select", NewSelect("High"), `{"type":"select","select":{"name":"High"}}`},
		{"cleared select", Select{}, `{"type":"select","select":null}`},
		{"title", NewTitle("Ship it"), `{"type":"title","title":[{"type":"text","text":{"content":"Ship it"}}]}`},
		{"number", NewNumber(3), `{"type":"number","number":3}`},
		{"relation", NewRelation("a", "b"), `{"type":"relation","relation":[{"id":"a"},{"id":"b"}]}`},
		{"date", NewDate("2024-02-01"), `{"type":"date","date":{"start":"2024-02-01"}}`},
		{"checkbox", NewCheckbox(false), `{"type":"checkbox","checkbox":false}`},
		{"multi select", NewMultiSelect("go"), `{"type":"multi_select","multi_select":[{"name":"go"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Marshal(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestBag_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	bag := Bag{
		"Title":        NewTitle("Implement login"),
		"Status":       NewSelect("Backlog"),
		"Dependencies": NewRelation("dep-1"),
		"Estimate":     NewNumber(4),
	}

	data, err := json.Marshal(bag)
	require.NoError(t, err)

	var decoded Bag
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Implement login", decoded.Text("Title"))
	assert.Equal(t, "Backlog", decoded.SelectName("Status"))
	assert.Equal(t, []string{"dep-1"}, decoded.RelationIDs("Dependencies"))
	require.NotNil(t, decoded.Number("Estimate"))
	assert.InDelta(t, 4.0, *decoded.Number("Estimate"), 0.0001)
}

func TestBag_MarshalSkipsUnsupported(t *testing.T) {
	t.Parallel()

	bag := Bag{
		"Status":  NewSelect("Claimed"),
		"Formula": Unsupported{Type: "formula", Raw: []byte(`{}`)},
	}
	data, err := json.Marshal(bag)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Formula")
}

func TestBag_Accessors(t *testing.T) {
	t.Parallel()

	bag := Bag{
		"Name":   NewTitle("Alpha"),
		"Notes":  RichText{Segments: []Segment{{PlainText: "one "}, {PlainText: "two"}}},
		"Tags":   NewMultiSelect("x", "y"),
		"Due":    NewDate("2024-03-01"),
		"Status": NewSelect("Done"),
	}

	assert.Equal(t, "Alpha", bag.TitleText())
	assert.Equal(t, "one two", bag.Text("Notes"))
	assert.Empty(t, bag.Text("Status"))
	assert.Equal(t, []string{"x", "y"}, bag.MultiSelectNames("Tags"))
	assert.Equal(t, "2024-03-01", bag.DateStart("Due"))
	assert.Nil(t, bag.Number("Missing"))
	assert.Equal(t, []string{"Due", "Name", "Notes", "Status", "Tags"}, bag.Names())
}

func TestBag_MergeDoesNotMutate(t *testing.T) {
	t.Parallel()

	base := Bag{"Status": NewSelect("Backlog")}
	merged := base.Merge(Bag{"Status": NewSelect("Claimed"), "Priority": NewSelect("Low")})

	assert.Equal(t, "Backlog", base.SelectName("Status"))
	assert.Equal(t, "Claimed", merged.SelectName("Status"))
	assert.Len(t, merged, 2)
}

func TestPlain(t *testing.T) {
	t.Parallel()

	n := 2.0
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"select", NewSelect("High"), "High"},
		{"empty select", Select{}, nil},
		{"multi-segment text keeps first", RichText{Segments: []Segment{{PlainText: "a"}, {PlainText: "b"}}}, "a"},
		{"empty title", Title{}, ""},
		{"number", Number{Value: &n}, 2.0},
		{"empty number", Number{}, nil},
		{"date", Date{Start: "2024-01-01", End: "2024-01-02"}, "2024-01-01"},
		{"relation", NewRelation("a", "b"), []string{"a", "b"}},
		{"checkbox", NewCheckbox(true), true},
		{"scalar passthrough", "Backlog", "Backlog"},
		{"int widened", 3, 3.0},
		{"raw select", map[string]any{"type": "select", "select": map[string]any{"name": "Low"}}, "Low"},
		{"raw rich text", []any{map[string]any{"plain_text": "first"}, map[string]any{"plain_text": "second"}}, "first"},
		{"raw option list", []any{map[string]any{"name": "go"}, map[string]any{"name": "api"}}, []any{"go", "api"}},
		{"raw date", map[string]any{"start": "2024-05-05", "end": nil}, "2024-05-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Plain(tt.in))
		})
	}
}
