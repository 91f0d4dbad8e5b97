package render

import (
	"fmt"
	"strings"
)

// DefaultLocale is the locale used when none (or an unknown one) is set.
const DefaultLocale = "it"

// Messages holds the user-facing chrome strings shared by every renderer.
// Messages coming from the scoring service or the form session are shown
// verbatim and are not part of the catalog.
type Messages struct {
	Title          string
	Heading        string
	ModelLabel     string
	ModelPrompt    string
	LoadModel      string
	Submit         string
	Submitting     string
	Loading        string
	ResultTitle    string
	Outcome        string
	Probability    string
	ErrorTitle     string
	Empty          string
	NoModels       string
	ConfirmSubmit  string
	ConfirmRestart string
}

var catalogs = map[string]Messages{
	"it": {
		Title:          "Applicazione Rilevamento Frodi Carte di Credito",
		Heading:        "Seleziona Modello e Inserisci Dati Transazione",
		ModelLabel:     "Scegli il Modello:",
		ModelPrompt:    "-- Seleziona un modello --",
		LoadModel:      "Carica Parametri",
		Submit:         "Ottieni Predizione",
		Submitting:     "Predizione in corso...",
		Loading:        "Caricamento parametri modello...",
		ResultTitle:    "Risultato Predizione (Modello: %s)",
		Outcome:        "Esito",
		Probability:    "Probabilità di Frode",
		ErrorTitle:     "Errore",
		Empty:          "Seleziona un modello e attendi il caricamento dei suoi parametri.",
		NoModels:       "Nessun modello disponibile.",
		ConfirmSubmit:  "Inviare la richiesta di predizione?",
		ConfirmRestart: "Eseguire un'altra predizione?",
	},
	"en": {
		Title:          "Credit Card Fraud Detection",
		Heading:        "Select a Model and Enter Transaction Data",
		ModelLabel:     "Choose the model:",
		ModelPrompt:    "-- Select a model --",
		LoadModel:      "Load Parameters",
		Submit:         "Get Prediction",
		Submitting:     "Predicting...",
		Loading:        "Loading model parameters...",
		ResultTitle:    "Prediction Result (Model: %s)",
		Outcome:        "Outcome",
		Probability:    "Fraud Probability",
		ErrorTitle:     "Error",
		Empty:          "Select a model and wait for its parameters to load.",
		NoModels:       "No models available.",
		ConfirmSubmit:  "Send the prediction request?",
		ConfirmRestart: "Run another prediction?",
	},
}

// MessagesFor returns the catalog for locale. Region suffixes are ignored
// ("en-GB" resolves to "en"); unknown locales fall back to DefaultLocale.
func MessagesFor(locale string) Messages {
	key, _ := ResolveLocale(locale)
	return catalogs[key]
}

// ResolveLocale reduces locale to a catalog key. ok is false, and the key is
// DefaultLocale, when no catalog matches.
func ResolveLocale(locale string) (key string, ok bool) {
	key = strings.ToLower(strings.TrimSpace(locale))
	if idx := strings.IndexAny(key, "-_"); idx > 0 {
		key = key[:idx]
	}
	if _, found := catalogs[key]; found {
		return key, true
	}
	return DefaultLocale, false
}

// ResultHeading formats the result title for the given model name.
func (m Messages) ResultHeading(modelName string) string {
	return fmt.Sprintf(m.ResultTitle, modelName)
}
