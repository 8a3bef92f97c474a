package service

import (
	"fmt"
	"regexp"
)

// Template holds the subject and body of a message with zero or more
// {field} placeholders, resolved per recipient by explicit map lookup.
type Template struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// MissingFieldError marks a placeholder with no value for a recipient.
// It aborts the whole job at validation time, before any send.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("template references field %q with no value", e.Field)
}

func expand(s string, fields map[string]string) (string, error) {
	var missing *MissingFieldError

	out := placeholderPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := m[1 : len(m)-1]

		value, found := fields[key]
		if !found && missing == nil {
			missing = &MissingFieldError{Field: key}
		}

		return value
	})
	if missing != nil {
		return "", missing
	}

	return out, nil
}

// Render resolves every placeholder in the subject and body against the
// given field values.
func (t Template) Render(fields map[string]string) (subject, body string, err error) {
	subject, err = expand(t.Subject, fields)
	if err != nil {
		return "", "", err
	}

	body, err = expand(t.Body, fields)
	if err != nil {
		return "", "", err
	}

	return subject, body, nil
}
