package render

import (
	"strings"
	"unicode"

	"github.com/goliatone/go-fraudform/pkg/model"
)

// ErrorField finds the schema field a form-level message is about so
// renderers can flag the matching input. Quoted names ('V2' or "V2") win;
// otherwise the longest field name appearing as a whole word is used. An
// empty string means the message is form-level only.
func ErrorField(schema model.ModelSchema, message string) string {
	message = strings.TrimSpace(message)
	if message == "" || len(schema.Fields) == 0 {
		return ""
	}

	best := ""
	for _, field := range schema.Fields {
		name := field.Name
		if name == "" {
			continue
		}
		if strings.Contains(message, "'"+name+"'") || strings.Contains(message, `"`+name+`"`) {
			return name
		}
		if len(name) > len(best) && containsWord(message, name) {
			best = name
		}
	}
	return best
}

func containsWord(text, word string) bool {
	for offset := 0; offset < len(text); {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(word)
		if boundary(text, start-1) && boundary(text, end) {
			return true
		}
		offset = start + 1
	}
	return false
}

func boundary(text string, pos int) bool {
	if pos < 0 || pos >= len(text) {
		return true
	}
	r := rune(text[pos])
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}
