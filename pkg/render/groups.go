package render

import (
	"strings"

	"github.com/goliatone/go-fraudform/pkg/model"
)

// Group classes applied to field containers.
const (
	GroupMain     = "main-feature-group"
	GroupVFeature = "v-feature-group"
)

// FieldGroup is a run of consecutive fields sharing a container class.
type FieldGroup struct {
	Class  string
	Fields []model.FieldSpec
}

// GroupClass returns the container class for a field name. Anonymised
// principal components (V1..V28) are styled apart from the named inputs.
func GroupClass(name string) string {
	if strings.HasPrefix(name, "V") {
		return GroupVFeature
	}
	return GroupMain
}

// GroupFields splits fields into consecutive runs by GroupClass, keeping
// schema order. The class only affects presentation.
func GroupFields(fields []model.FieldSpec) []FieldGroup {
	if len(fields) == 0 {
		return nil
	}
	groups := make([]FieldGroup, 0, 2)
	for _, field := range fields {
		class := GroupClass(field.Name)
		last := len(groups) - 1
		if last >= 0 && groups[last].Class == class {
			groups[last].Fields = append(groups[last].Fields, field)
			continue
		}
		groups = append(groups, FieldGroup{Class: class, Fields: []model.FieldSpec{field}})
	}
	return groups
}
