package form

import "github.com/goliatone/go-fraudform/pkg/model"

// View is a point-in-time copy of a session, safe to hand to renderers.
type View struct {
	Models     []model.ModelDescriptor
	SelectedID string
	Schema     model.ModelSchema
	Values     model.FormValues
	Loading    bool
	FormError  string
	// ErrorField names the input FormError is about when the session knows
	// it, e.g. the field that failed to parse.
	ErrorField string
	Result     *model.PredictionResult
}

// Fields returns the active schema fields in display order.
func (v View) Fields() []model.FieldSpec {
	return v.Schema.Fields
}

// Value returns the raw text for a field, "0.0" when unset.
func (v View) Value(name string) string {
	return v.Values.Raw(name)
}

// CanSubmit reports whether a submission may start.
func (v View) CanSubmit() bool {
	return !v.Loading && v.SelectedID != "" && len(v.Schema.Fields) > 0
}

// SelectedModel returns the catalog entry of the selected model.
func (v View) SelectedModel() (model.ModelDescriptor, bool) {
	for _, descriptor := range v.Models {
		if descriptor.ID == v.SelectedID {
			return descriptor, true
		}
	}
	return model.ModelDescriptor{}, false
}

// ResultModelName names the model a result came from: the name reported by
// the service, else the catalog display name, else the selected id.
func (v View) ResultModelName() string {
	if v.Result != nil && v.Result.ModelUsed != "" {
		return v.Result.ModelUsed
	}
	if descriptor, ok := v.SelectedModel(); ok {
		return descriptor.Label()
	}
	return v.SelectedID
}
