package intake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRecipients(t *testing.T) {
	csv := "email,name,company\n" +
		"a@example.com,Ada,Initech\n" +
		"b@example.com,Bob,Globex\n"

	recipients, err := ReadRecipients(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, recipients, 2)
	assert.Equal(t, "a@example.com", recipients[0].Address)
	assert.Equal(t, "Ada", recipients[0].Fields["name"])
	assert.Equal(t, "Initech", recipients[0].Fields["company"])
	assert.Equal(t, "b@example.com", recipients[1].Address)
}

func TestReadRecipientsHeaderCaseAndSpace(t *testing.T) {
	csv := "Name, Email\nAda, a@example.com\n"

	recipients, err := ReadRecipients(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, recipients, 1)
	assert.Equal(t, "a@example.com", recipients[0].Address)
	assert.Equal(t, "Ada", recipients[0].Fields["name"])
}

func TestReadRecipientsSkipsBlankEmails(t *testing.T) {
	csv := "email,name\n" +
		"a@example.com,Ada\n" +
		",Ghost\n" +
		"b@example.com,Bob\n"

	recipients, err := ReadRecipients(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, recipients, 2)
	assert.Equal(t, "a@example.com", recipients[0].Address)
	assert.Equal(t, "b@example.com", recipients[1].Address)
}

func TestReadRecipientsPreservesOrder(t *testing.T) {
	csv := "email\nc@example.com\na@example.com\nb@example.com\n"

	recipients, err := ReadRecipients(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, recipients, 3)
	assert.Equal(t, "c@example.com", recipients[0].Address)
	assert.Equal(t, "a@example.com", recipients[1].Address)
	assert.Equal(t, "b@example.com", recipients[2].Address)
}

func TestReadRecipientsNoEmailColumn(t *testing.T) {
	csv := "name,company\nAda,Initech\n"

	_, err := ReadRecipients(strings.NewReader(csv))
	assert.Equal(t, ErrNoEmailColumn, err)
}

func TestReadRecipientsEmptyFile(t *testing.T) {
	_, err := ReadRecipients(strings.NewReader(""))
	assert.Equal(t, ErrNoHeader, err)
}

func TestReadRecipientsHeaderOnly(t *testing.T) {
	recipients, err := ReadRecipients(strings.NewReader("email,name\n"))
	require.NoError(t, err)
	assert.Empty(t, recipients)
}
