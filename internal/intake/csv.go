// Package intake turns uploaded CSV files into ordered recipient
// lists. The header row names the template fields; an "email" column
// is required and every other column becomes a field value.
package intake

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"

	"mailblast/internal/service"
)

const emailColumn = "email"

var (
	ErrNoHeader      = errors.New("csv has no header row")
	ErrNoEmailColumn = errors.New("csv has no email column")
)

// ReadRecipients parses the CSV stream in row order. Rows with a blank
// email cell are dropped, matching how uploads with trailing empty
// lines usually arrive.
func ReadRecipients(r io.Reader) ([]service.Recipient, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}

	emailIdx := -1
	for i, name := range header {
		header[i] = strings.ToLower(strings.TrimSpace(name))
		if header[i] == emailColumn {
			emailIdx = i
		}
	}
	if emailIdx < 0 {
		return nil, ErrNoEmailColumn
	}

	var recipients []service.Recipient

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read row")
		}

		address := strings.TrimSpace(row[emailIdx])
		if address == "" {
			continue
		}

		fields := make(map[string]string, len(header)-1)
		for i, name := range header {
			if i == emailIdx || i >= len(row) {
				continue
			}
			fields[name] = strings.TrimSpace(row[i])
		}

		recipients = append(recipients, service.Recipient{
			Address: address,
			Fields:  fields,
		})
	}

	return recipients, nil
}
