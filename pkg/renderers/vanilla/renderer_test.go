package vanilla_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-fraudform/pkg/form"
	"github.com/goliatone/go-fraudform/pkg/model"
	"github.com/goliatone/go-fraudform/pkg/render"
	"github.com/goliatone/go-fraudform/pkg/renderers/vanilla"
)

func sampleView() form.View {
	schema := model.ModelSchema{
		ModelID: "rf",
		Fields: []model.FieldSpec{
			{Name: "Time", Kind: model.ValueKindNumeric},
			{Name: "Amount", Kind: model.ValueKindNumeric, Label: "Importo"},
			{Name: "V1", Kind: model.ValueKindNumeric},
		},
	}
	values := model.NewFormValues(schema)
	values["Amount"] = "49.99"
	return form.View{
		Models: []model.ModelDescriptor{
			{ID: "rf", DisplayName: "Random Forest"},
			{ID: "lr", DisplayName: "Logistic Regression"},
		},
		SelectedID: "rf",
		Schema:     schema,
		Values:     values,
	}
}

func renderView(t *testing.T, view form.View, opts render.RenderOptions, options ...vanilla.Option) string {
	t.Helper()
	renderer, err := vanilla.New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), view, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, html)
		}
	}
}

func assertNotContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(html, fragment) {
			t.Fatalf("expected output not to contain %q\n%s", fragment, html)
		}
	}
}

func TestRender_FieldsAndModels(t *testing.T) {
	html := renderView(t, sampleView(), render.RenderOptions{Action: "/"})

	assertContains(t, html,
		`<option value="rf" selected>Random Forest</option>`,
		`<option value="lr">Logistic Regression</option>`,
		`<option value="">-- Seleziona un modello --</option>`,
		`<div class="form-group main-feature-group" data-field="Time">`,
		`<div class="form-group v-feature-group" data-field="V1">`,
		`<label for="ff-Amount">Importo:</label>`,
		`<input type="number" step="any" id="ff-Amount" name="Amount" value="49.99" required>`,
		`<input type="number" step="any" id="ff-V1" name="V1" value="0.0" required>`,
		`name="model_choice"`,
		`action="/"`,
		`>Ottieni Predizione</button>`,
	)
	assertNotContains(t, html, "data-outcome=")

	if strings.Index(html, `name="Time"`) > strings.Index(html, `name="Amount"`) ||
		strings.Index(html, `name="Amount"`) > strings.Index(html, `name="V1"`) {
		t.Fatalf("fields rendered out of schema order")
	}
}

func TestRender_SanitisesRemoteStrings(t *testing.T) {
	view := sampleView()
	view.Models[0].DisplayName = `<script>alert(1)</script>Forest`
	view.Schema.Fields[1].Label = `<img src=x onerror=alert(1)>Importo`
	view.FormError = `<b>Errore API</b>`

	html := renderView(t, view, render.RenderOptions{})

	assertNotContains(t, html, "<script>alert", "<img", "<b>Errore")
	assertContains(t, html, ">Importo:</label>", ">Errore API</p>")
}

func TestRender_FormErrorMarksField(t *testing.T) {
	view := sampleView()
	view.Values["V1"] = "abc"
	view.FormError = "Valore non valido per V1. Deve essere un numero."

	html := renderView(t, view, render.RenderOptions{})

	assertContains(t, html,
		`<div class="form-group v-feature-group fraudform-field--invalid" data-field="V1">`,
		`value="abc" required aria-invalid="true" aria-describedby="ff-V1-error"`,
		`id="ff-V1-error">Valore non valido per V1. Deve essere un numero.</p>`,
	)
}

func TestRender_ErrorFieldWinsOverMessageText(t *testing.T) {
	schema := model.ModelSchema{
		ModelID: "rf",
		Fields: []model.FieldSpec{
			{Name: "Time", Kind: model.ValueKindNumeric, Label: "Tempo"},
			{Name: "Amount", Kind: model.ValueKindNumeric, Label: "Importo per Time slot"},
		},
	}
	values := model.NewFormValues(schema)
	values["Time"] = "1"
	values["Amount"] = "abc"
	view := form.View{
		Models:     []model.ModelDescriptor{{ID: "rf", DisplayName: "Random Forest"}},
		SelectedID: "rf",
		Schema:     schema,
		Values:     values,
		FormError:  "Valore non valido per Importo per Time slot. Deve essere un numero.",
		ErrorField: "Amount",
	}

	html := renderView(t, view, render.RenderOptions{})

	assertContains(t, html,
		`fraudform-field--invalid" data-field="Amount">`,
		`name="Amount" value="abc" required aria-invalid="true" aria-describedby="ff-Amount-error"`,
		`id="ff-Amount-error">`,
	)
	assertNotContains(t, html,
		`fraudform-field--invalid" data-field="Time">`,
		`name="Time" value="1" required aria-invalid`,
		`id="ff-Time-error"`,
	)
}

func TestRender_ResultPanel(t *testing.T) {
	cases := []struct {
		name   string
		result model.PredictionResult
		want   []string
		absent []string
	}{
		{
			name:   "fraud",
			result: model.PredictionResult{Verdict: "Frode", IsFraud: true, FraudProbability: 0.9134, ModelUsed: "Random Forest (Tuned)"},
			want: []string{
				`<div class="prediction-result fraud fraudform-result" data-outcome="fraud">`,
				`Risultato Predizione (Modello: Random Forest (Tuned))`,
				`Esito: <strong>Frode</strong>`,
				`Probabilità di Frode: <strong>91.34%</strong>`,
			},
		},
		{
			name:   "legitimate falls back to catalog name",
			result: model.PredictionResult{Verdict: "Legittima", FraudProbability: 0.0013},
			want: []string{
				`data-outcome="legitimate"`,
				`Risultato Predizione (Modello: Random Forest)`,
				`<strong>0.13%</strong>`,
			},
		},
		{
			name:   "error shows no verdict",
			result: model.ErrorResult("Errore API"),
			want:   []string{`data-outcome="error"`, `<p>Errore</p>`},
			absent: []string{"Esito:", "Probabilità di Frode:"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			view := sampleView()
			result := tc.result
			view.Result = &result
			html := renderView(t, view, render.RenderOptions{})
			assertContains(t, html, tc.want...)
			assertNotContains(t, html, tc.absent...)
		})
	}
}

func TestRender_LoadingDisablesControls(t *testing.T) {
	view := sampleView()
	view.Loading = true

	html := renderView(t, view, render.RenderOptions{})
	assertContains(t, html,
		`data-loading="true"`,
		`class="model-select" disabled`,
		`<button type="submit" disabled>Predizione in corso...</button>`,
	)
}

func TestRender_EmptyState(t *testing.T) {
	view := form.View{Models: sampleView().Models}

	html := renderView(t, view, render.RenderOptions{Locale: "en"})
	assertContains(t, html,
		"Select a model and wait for its parameters to load.",
		`<button type="submit" disabled>Get Prediction</button>`,
	)
	assertNotContains(t, html, `class="dynamic-fields-grid`)
}

func TestRender_ThemeAndHiddenFields(t *testing.T) {
	opts := render.RenderOptions{
		Theme: &theme.RendererConfig{
			Theme:   "acme",
			Variant: "dark",
			CSSVars: map[string]string{"--ff-fraud": "#ff0000"},
		},
		HiddenFields: map[string]string{"locale": "it", "_csrf": "tok"},
	}
	html := renderView(t, sampleView(), opts, vanilla.WithInlineStyles(false))

	assertContains(t, html,
		`<style data-theme="acme" data-variant="dark">`,
		"--ff-fraud: #ff0000;",
		`<input type="hidden" name="_csrf" value="tok">`,
		`<input type="hidden" name="locale" value="it">`,
	)
	assertNotContains(t, html, ".prediction-result.fraud")
	if strings.Index(html, `name="_csrf"`) > strings.Index(html, `name="locale"`) {
		t.Fatalf("hidden fields should be sorted")
	}
}

func TestRender_ThemePartialOverride(t *testing.T) {
	files := fstest.MapFS{
		"custom.tmpl": {Data: []byte(`{{ selected }}|{% for g in groups %}{{ g.Class }};{% endfor %}`)},
	}
	opts := render.RenderOptions{
		Theme: &theme.RendererConfig{Partials: map[string]string{"forms.form": "custom.tmpl"}},
	}
	html := renderView(t, sampleView(), opts, vanilla.WithTemplatesFS(files))

	if html != "rf|main-feature-group;v-feature-group;" {
		t.Fatalf("unexpected override output %q", html)
	}
}
