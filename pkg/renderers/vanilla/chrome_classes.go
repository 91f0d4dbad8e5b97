package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm       ChromeClass = "fraudform-form"
	ClassHeader     ChromeClass = "fraudform-header"
	ClassModel      ChromeClass = "fraudform-model"
	ClassFields     ChromeClass = "fraudform-fields"
	ClassActions    ChromeClass = "fraudform-actions"
	ClassErrors     ChromeClass = "fraudform-errors"
	ClassResult     ChromeClass = "fraudform-result"
	ClassEmpty      ChromeClass = "fraudform-empty"
	ClassFieldError ChromeClass = "fraudform-field--invalid"
)
