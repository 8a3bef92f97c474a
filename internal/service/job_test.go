package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJob() *SendJob {
	return NewSendJob(
		EmailAddress{Name: "Ops", Address: "ops@example.com"},
		Template{Subject: "Hi {name}", Body: "Hello {name}"},
		[]Recipient{
			{Address: "a@example.com", Fields: map[string]string{"name": "A"}},
			{Address: "b@example.com", Fields: map[string]string{"name": "B"}},
		},
		10,
	)
}

func TestNewSendJobPendingResults(t *testing.T) {
	job := validJob()

	require.Len(t, job.Results, 2)
	assert.Equal(t, JobQueued, job.Status)
	assert.Equal(t, "a@example.com", job.Results[0].Address)
	assert.Equal(t, StatusPending, job.Results[0].Status)
	assert.Equal(t, StatusPending, job.Results[1].Status)
	assert.NotEmpty(t, job.ID)
}

func TestValidateOK(t *testing.T) {
	require.NoError(t, validJob().Validate())
}

func TestValidateNoRecipients(t *testing.T) {
	job := validJob()
	job.Recipients = nil

	assert.Equal(t, ErrNoRecipients, job.Validate())
}

func TestValidateBadRate(t *testing.T) {
	job := validJob()
	job.RatePerSecond = 0

	assert.Equal(t, ErrBadRate, job.Validate())
}

func TestValidateBadRecipientAddress(t *testing.T) {
	job := validJob()
	job.Recipients[1].Address = "not-an-address"

	var addrErr *AddressError
	require.ErrorAs(t, job.Validate(), &addrErr)
	assert.Equal(t, "not-an-address", addrErr.Address)
}

func TestValidateBadSenderAddress(t *testing.T) {
	job := validJob()
	job.From.Address = ""

	var addrErr *AddressError
	require.ErrorAs(t, job.Validate(), &addrErr)
}

func TestValidateMissingTemplateField(t *testing.T) {
	job := validJob()
	job.Recipients[1].Fields = nil

	var missing *MissingFieldError
	require.ErrorAs(t, job.Validate(), &missing)
	assert.Equal(t, "name", missing.Field)
}

func TestSummary(t *testing.T) {
	job := validJob()
	job.Results[0].Status = StatusSent
	job.Results[1].Status = StatusFailed

	summary := job.Summary()
	assert.Equal(t, Summary{Total: 2, Sent: 1, Failed: 1}, summary)
}
