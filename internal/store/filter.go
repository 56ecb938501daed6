package store

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/mrz1836/notionflow/internal/notion/property"
)

// Condition is a Notion filter condition keyword.
type Condition string

// Supported filter conditions.
const (
	ConditionEquals       Condition = "equals"
	ConditionDoesNotEqual Condition = "does_not_equal"
	ConditionContains     Condition = "contains"
	ConditionIsEmpty      Condition = "is_empty"
	ConditionIsNotEmpty   Condition = "is_not_empty"
)

// Filter is a database query filter. A leaf filter tests one property; a
// compound filter sets Or or And and ignores the leaf fields.
type Filter struct {
	Property  string
	Kind      property.Kind
	Condition Condition
	Value     any

	Or  []Filter
	And []Filter
}

// SelectEquals matches records whose select property equals value.
func SelectEquals(prop, value string) Filter {
	return Filter{Property: prop, Kind: property.KindSelect, Condition: ConditionEquals, Value: value}
}

// RelationContains matches records whose relation property includes id.
func RelationContains(prop, id string) Filter {
	return Filter{Property: prop, Kind: property.KindRelation, Condition: ConditionContains, Value: id}
}

// AnyOf combines filters with a logical or.
func AnyOf(filters ...Filter) *Filter {
	return &Filter{Or: filters}
}

// AllOf combines filters with a logical and.
func AllOf(filters ...Filter) *Filter {
	return &Filter{And: filters}
}

// MarshalJSON encodes the filter in the Notion query format:
//
//	{"property": "Status", "select": {"equals": "Backlog"}}
//	{"or": [ ... ]}
func (f Filter) MarshalJSON() ([]byte, error) {
	switch {
	case len(f.Or) > 0:
		return json.Marshal(map[string]any{"or": f.Or})
	case len(f.And) > 0:
		return json.Marshal(map[string]any{"and": f.And})
	}

	var value any = f.Value
	if f.Condition == ConditionIsEmpty || f.Condition == ConditionIsNotEmpty {
		value = true
	}
	return json.Marshal(map[string]any{
		"property": f.Property,
		string(f.Kind): map[string]any{
			string(f.Condition): value,
		},
	})
}

// Matches evaluates the filter against a property bag the way Notion would.
// Unknown conditions never match.
func (f Filter) Matches(props property.Bag) bool {
	switch {
	case len(f.Or) > 0:
		return slices.ContainsFunc(f.Or, func(sub Filter) bool { return sub.Matches(props) })
	case len(f.And) > 0:
		for _, sub := range f.And {
			if !sub.Matches(props) {
				return false
			}
		}
		return true
	}

	values := leafValues(props[f.Property])
	want, _ := f.Value.(string)

	switch f.Condition {
	case ConditionIsEmpty:
		return len(values) == 0
	case ConditionIsNotEmpty:
		return len(values) > 0
	case ConditionEquals:
		if n, ok := f.Value.(float64); ok {
			got := props.Number(f.Property)
			return got != nil && *got == n
		}
		if b, ok := f.Value.(bool); ok {
			c, isCheckbox := props[f.Property].(property.Checkbox)
			return isCheckbox && c.Checked == b
		}
		return len(values) == 1 && values[0] == want
	case ConditionDoesNotEqual:
		return !(len(values) == 1 && values[0] == want)
	case ConditionContains:
		if f.Kind == property.KindTitle || f.Kind == property.KindRichText {
			return len(values) == 1 && strings.Contains(strings.ToLower(values[0]), strings.ToLower(want))
		}
		return slices.Contains(values, want)
	default:
		return false
	}
}

// leafValues flattens a property into the string values a filter compares.
func leafValues(v property.Value) []string {
	switch p := v.(type) {
	case property.Title:
		if s := p.PlainText(); s != "" {
			return []string{s}
		}
	case property.RichText:
		if s := p.PlainText(); s != "" {
			return []string{s}
		}
	case property.Select:
		if p.Name != "" {
			return []string{p.Name}
		}
	case property.MultiSelect:
		return p.Names
	case property.Relation:
		return p.IDs
	case property.Date:
		if p.Start != "" {
			return []string{p.Start}
		}
	case property.Number:
		if p.Value != nil {
			return []string{"number"}
		}
	case property.Checkbox:
		if p.Checked {
			return []string{"true"}
		}
	}
	return nil
}
