package vanilla

import (
	"html"
	"strings"

	"github.com/goliatone/go-fraudform/pkg/model"
	"github.com/goliatone/go-fraudform/pkg/render"
)

// fieldMarkup renders one numeric input. Every FieldSpec goes through the
// same path; nothing is keyed on a particular field name.
func fieldMarkup(field model.FieldSpec, raw string, invalid bool, disabled bool) string {
	id := html.EscapeString(controlID(field.Name))
	name := html.EscapeString(field.Name)
	label := textSanitizer().Sanitize(field.DisplayLabel())

	var builder strings.Builder
	builder.Grow(256)

	builder.WriteString(`<div class="form-group `)
	builder.WriteString(render.GroupClass(field.Name))
	if invalid {
		builder.WriteByte(' ')
		builder.WriteString(string(ClassFieldError))
	}
	builder.WriteString(`" data-field="`)
	builder.WriteString(name)
	builder.WriteString(`">`)
	builder.WriteByte('\n')

	builder.WriteString(`  <label for="`)
	builder.WriteString(id)
	builder.WriteString(`">`)
	builder.WriteString(label)
	builder.WriteString(":</label>\n")

	builder.WriteString(`  <input type="number" step="any" id="`)
	builder.WriteString(id)
	builder.WriteString(`" name="`)
	builder.WriteString(name)
	builder.WriteString(`" value="`)
	builder.WriteString(html.EscapeString(raw))
	builder.WriteString(`" required`)
	if field.Kind != "" && field.Kind != model.ValueKindNumeric {
		builder.WriteString(` data-kind="`)
		builder.WriteString(html.EscapeString(string(field.Kind)))
		builder.WriteString(`"`)
	}
	if invalid {
		builder.WriteString(` aria-invalid="true" aria-describedby="`)
		builder.WriteString(html.EscapeString(errorID(field.Name)))
		builder.WriteString(`"`)
	}
	if disabled {
		builder.WriteString(` disabled`)
	}
	builder.WriteString(">\n</div>")
	return builder.String()
}

type groupView struct {
	Class  string
	Fields []string
}

func buildGroups(view groupSource) []groupView {
	groups := render.GroupFields(view.fields)
	out := make([]groupView, 0, len(groups))
	for _, group := range groups {
		markup := make([]string, 0, len(group.Fields))
		for _, field := range group.Fields {
			invalid := field.Name != "" && field.Name == view.errorField
			markup = append(markup, fieldMarkup(field, view.values.Raw(field.Name), invalid, view.disabled))
		}
		out = append(out, groupView{Class: group.Class, Fields: markup})
	}
	return out
}

type groupSource struct {
	fields     []model.FieldSpec
	values     model.FormValues
	errorField string
	disabled   bool
}
