package task

import (
	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/domain"
	"github.com/mrz1836/notionflow/internal/notion/property"
	"github.com/mrz1836/notionflow/internal/store"
)

// FromRecord decodes a Tasks database page into a Task. Missing properties
// leave the zero value.
func FromRecord(rec *store.Record) *domain.Task {
	props := rec.Properties
	t := &domain.Task{
		ID:             rec.ID,
		Title:          props.Text(constants.PropTitle),
		Status:         constants.TaskStatus(props.SelectName(constants.PropStatus)),
		Priority:       constants.Priority(props.SelectName(constants.PropPriority)),
		Type:           props.SelectName(constants.PropType),
		Description:    props.Text(constants.PropDescription),
		DependencyIDs:  append([]string(nil), props.RelationIDs(constants.PropDependencies)...),
		EstimatedHours: props.Number(constants.PropEstimatedHours),
		ActualHours:    props.Number(constants.PropActualHours),
		CreatedTime:    rec.CreatedTime,
	}
	if t.Title == "" {
		t.Title = props.TitleText()
	}
	if versions := props.RelationIDs(constants.PropVersion); len(versions) > 0 {
		t.VersionID = versions[0]
	}
	return t
}

// ToProperties encodes the writable fields of a Task. Empty optional fields
// are omitted.
func ToProperties(t *domain.Task) property.Bag {
	bag := property.Bag{
		constants.PropTitle:  property.NewTitle(t.Title),
		constants.PropStatus: property.NewSelect(string(t.Status)),
	}
	if t.Priority != "" {
		bag[constants.PropPriority] = property.NewSelect(string(t.Priority))
	}
	if t.Type != "" {
		bag[constants.PropType] = property.NewSelect(t.Type)
	}
	if t.Description != "" {
		bag[constants.PropDescription] = property.NewRichText(t.Description)
	}
	if len(t.DependencyIDs) > 0 {
		bag[constants.PropDependencies] = property.NewRelation(t.DependencyIDs...)
	}
	if t.EstimatedHours != nil {
		bag[constants.PropEstimatedHours] = property.NewNumber(*t.EstimatedHours)
	}
	if t.ActualHours != nil {
		bag[constants.PropActualHours] = property.NewNumber(*t.ActualHours)
	}
	if t.VersionID != "" {
		bag[constants.PropVersion] = property.NewRelation(t.VersionID)
	}
	return bag
}

// versionFromRecord decodes a Versions database page.
func versionFromRecord(rec *store.Record) *domain.Version {
	v := &domain.Version{ID: rec.ID, Name: rec.Properties.Text(constants.PropName)}
	if v.Name == "" {
		v.Name = rec.Properties.TitleText()
	}
	if projects := rec.Properties.RelationIDs(constants.PropProject); len(projects) > 0 {
		v.ProjectID = projects[0]
	}
	return v
}

// historyProps converts a property bag to the map the history tracker diffs.
func historyProps(bag property.Bag) map[string]any {
	out := make(map[string]any, len(bag))
	for k, v := range bag {
		if _, ok := v.(property.Unsupported); ok {
			continue
		}
		out[k] = v
	}
	return out
}
