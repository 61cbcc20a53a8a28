// Package dataset loads the classified ticket dataset and partitions it for
// training.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"deskinsight/internal/domain"
	"deskinsight/internal/normalize"
)

type document struct {
	Tickets []domain.Record `json:"tickets_emitidos"`
}

// Load reads the classified dataset at path and projects every ticket into a
// training example.
func Load(path string) ([]domain.TrainingExample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) ([]domain.TrainingExample, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	examples := make([]domain.TrainingExample, 0, len(doc.Tickets))
	for i, rec := range doc.Tickets {
		ex, err := project(rec, i)
		if err != nil {
			return nil, err
		}
		examples = append(examples, ex)
	}
	return examples, nil
}

func project(rec domain.Record, i int) (domain.TrainingExample, error) {
	var ex domain.TrainingExample
	var err error

	if ex.ClientID, err = normalize.ID(rec[domain.FieldClient]); err != nil {
		return ex, malformed(rec, i, domain.FieldClient, err)
	}
	if ex.IncidentTypeID, err = normalize.ID(rec[domain.FieldIncidentType]); err != nil {
		return ex, malformed(rec, i, domain.FieldIncidentType, err)
	}
	if ex.IsMaintenance, err = normalize.Flag(rec[domain.FieldMaintenance]); err != nil {
		return ex, malformed(rec, i, domain.FieldMaintenance, err)
	}
	if ex.IsCritical, err = normalize.Flag(rec[domain.FieldCritical]); err != nil {
		return ex, malformed(rec, i, domain.FieldCritical, err)
	}
	if ex.OpenEpoch, err = epoch(rec, i, domain.FieldOpenDate); err != nil {
		return ex, err
	}
	if ex.CloseEpoch, err = epoch(rec, i, domain.FieldCloseDate); err != nil {
		return ex, err
	}
	return ex, nil
}

func epoch(rec domain.Record, i int, field string) (float64, error) {
	s, _ := rec[field].(string)
	t, ok := normalize.ParseDate(s)
	if !ok {
		return 0, &domain.DateParseError{Index: i + 1, Field: field, Value: normalize.Text(rec[field])}
	}
	return float64(t.Unix()), nil
}

func malformed(rec domain.Record, i int, field string, err error) error {
	return &domain.MalformedRecordError{Group: domain.GroupTickets, Index: i, Field: field, Value: rec[field], Err: err}
}
