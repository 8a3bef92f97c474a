package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRender(t *testing.T) {
	tpl := Template{
		Subject: "Hello {name}",
		Body:    "Hi {name}, your invite for {event} is ready.",
	}

	subject, body, err := tpl.Render(map[string]string{
		"name":  "Ada",
		"event": "GopherCon",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello Ada", subject)
	assert.Equal(t, "Hi Ada, your invite for GopherCon is ready.", body)
}

func TestTemplateRenderNoPlaceholders(t *testing.T) {
	tpl := Template{Subject: "Plain", Body: "No placeholders here."}

	subject, body, err := tpl.Render(nil)
	require.NoError(t, err)

	assert.Equal(t, "Plain", subject)
	assert.Equal(t, "No placeholders here.", body)
}

func TestTemplateRenderMissingField(t *testing.T) {
	tpl := Template{Subject: "Hi {name}", Body: "See you at {event}."}

	_, _, err := tpl.Render(map[string]string{"name": "Ada"})
	require.Error(t, err)

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "event", missing.Field)
}

func TestTemplateRenderEmptyValueIsNotMissing(t *testing.T) {
	tpl := Template{Subject: "Hi {name}", Body: "x"}

	subject, _, err := tpl.Render(map[string]string{"name": ""})
	require.NoError(t, err)
	assert.Equal(t, "Hi ", subject)
}
