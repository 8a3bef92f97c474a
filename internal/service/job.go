package service

import (
	"net/mail"
	"time"

	"github.com/pkg/errors"
)

// Recipient is one target address plus the field values used to
// personalize the template for that address.
type Recipient struct {
	Address string            `json:"address"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// DisplayName returns the recipient's name field, if the upload had one.
func (r *Recipient) DisplayName() string {
	return r.Fields["name"]
}

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

type ResultStatus string

const (
	StatusPending ResultStatus = "pending"
	StatusSent    ResultStatus = "sent"
	StatusFailed  ResultStatus = "failed"
	StatusSkipped ResultStatus = "skipped"
)

// SendResult records the terminal outcome for a single recipient.
// Within one run a result only moves pending -> sent/failed/skipped.
type SendResult struct {
	Address string       `json:"address"`
	Status  ResultStatus `json:"status"`
	Error   string       `json:"error,omitempty"`
	At      time.Time    `json:"at,omitempty"`
}

// SendJob is one bulk-send execution over an ordered recipient list.
// It is owned exclusively by the dispatcher while running.
type SendJob struct {
	ID            string       `json:"id"`
	From          EmailAddress `json:"from"`
	Template      Template     `json:"template"`
	Recipients    []Recipient  `json:"recipients"`
	RatePerSecond float64      `json:"rate_per_second"`

	Status     JobStatus    `json:"status"`
	Error      string       `json:"error,omitempty"`
	Results    []SendResult `json:"results"`
	CreatedAt  time.Time    `json:"created_at"`
	StartedAt  time.Time    `json:"started_at,omitempty"`
	FinishedAt time.Time    `json:"finished_at,omitempty"`
}

// Summary aggregates the per-recipient outcomes of a job.
type Summary struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Pending int `json:"pending"`
}

func (j *SendJob) Summary() Summary {
	s := Summary{Total: len(j.Results)}
	for i := range j.Results {
		switch j.Results[i].Status {
		case StatusSent:
			s.Sent++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		default:
			s.Pending++
		}
	}
	return s
}

var (
	ErrNoRecipients = errors.New("job has no recipients")
	ErrBadRate      = errors.New("rate limit must be greater than zero")
)

// AddressError marks a recipient address that does not parse.
type AddressError struct {
	Address string
}

func (e *AddressError) Error() string {
	return "invalid email address: " + e.Address
}

// Validate checks everything that must hold before a single send is
// attempted: recipients present, a positive rate, parseable addresses
// and a template that resolves for every recipient. A job that fails
// validation performs zero sends.
func (j *SendJob) Validate() error {
	if len(j.Recipients) == 0 {
		return ErrNoRecipients
	}
	if j.RatePerSecond <= 0 {
		return ErrBadRate
	}

	if _, err := mail.ParseAddress(j.From.Address); err != nil {
		return errors.Wrap(&AddressError{Address: j.From.Address}, "sender")
	}

	for i := range j.Recipients {
		r := &j.Recipients[i]

		if _, err := mail.ParseAddress(r.Address); err != nil {
			return &AddressError{Address: r.Address}
		}

		if _, _, err := j.Template.Render(r.Fields); err != nil {
			return err
		}
	}

	return nil
}
