// Package normalize turns the raw incident record set into its canonical shape
// and decodes it into typed entities for the store.
package normalize

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"deskinsight/internal/domain"
)

// Normalize returns a canonical copy of rs. It trims names, fills defaults for
// missing optional fields and coerces the ticket flags to 0/1. The input is
// not modified, and Normalize(Normalize(x)) equals Normalize(x).
//
// A flag that cannot be read as a boolean, or a name that is missing or not a
// string, aborts the whole batch with *domain.MalformedRecordError.
func Normalize(rs domain.RecordSet) (domain.RecordSet, error) {
	out := domain.RecordSet{
		Clients:       make([]domain.Record, len(rs.Clients)),
		Employees:     make([]domain.Record, len(rs.Employees)),
		Tickets:       make([]domain.Record, len(rs.Tickets)),
		IncidentTypes: make([]domain.Record, len(rs.IncidentTypes)),
	}

	for i, raw := range rs.Clients {
		rec := clone(raw)
		if err := trimName(rec, domain.GroupClients, i); err != nil {
			return domain.RecordSet{}, err
		}
		setDefault(rec, domain.FieldPhone, domain.Sentinel)
		setDefault(rec, domain.FieldProvince, domain.Sentinel)
		out.Clients[i] = rec
	}

	for i, raw := range rs.Employees {
		rec := clone(raw)
		if err := trimName(rec, domain.GroupEmployees, i); err != nil {
			return domain.RecordSet{}, err
		}
		setDefault(rec, domain.FieldLevel, 0)
		out.Employees[i] = rec
	}

	for i, raw := range rs.Tickets {
		rec := clone(raw)
		setDefault(rec, domain.FieldOpenDate, domain.Sentinel)
		setDefault(rec, domain.FieldCloseDate, domain.Sentinel)
		setDefault(rec, domain.FieldSatisfaction, 1)
		for _, field := range []string{domain.FieldMaintenance, domain.FieldCritical} {
			flag, err := Flag(rec[field])
			if err != nil {
				return domain.RecordSet{}, &domain.MalformedRecordError{
					Group: domain.GroupTickets, Index: i, Field: field, Value: rec[field], Err: err,
				}
			}
			rec[field] = flag
		}
		out.Tickets[i] = rec
	}

	for i, raw := range rs.IncidentTypes {
		rec := clone(raw)
		if err := trimName(rec, domain.GroupIncidentTypes, i); err != nil {
			return domain.RecordSet{}, err
		}
		out.IncidentTypes[i] = rec
	}

	return out, nil
}

// Flag coerces a boolean-like raw value to 0 or 1.
func Flag(v any) (int, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case int:
		return flagFromFloat(float64(x))
	case int64:
		return flagFromFloat(float64(x))
	case float64:
		return flagFromFloat(x)
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		switch s {
		case "true", "yes", "t", "y":
			return 1, nil
		case "false", "no", "f", "n":
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a boolean: %q", x)
		}
		return flagFromFloat(f)
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func flagFromFloat(f float64) (int, error) {
	switch f {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	}
	return 0, fmt.Errorf("numeric flag must be 0 or 1, got %v", f)
}

func trimName(rec domain.Record, group string, index int) error {
	name, ok := rec[domain.FieldName].(string)
	if !ok {
		return &domain.MalformedRecordError{Group: group, Index: index, Field: domain.FieldName, Value: rec[domain.FieldName]}
	}
	rec[domain.FieldName] = strings.TrimSpace(name)
	return nil
}

// setDefault fills a field that is absent or JSON null.
func setDefault(rec domain.Record, field string, value any) {
	if v, ok := rec[field]; !ok || v == nil {
		rec[field] = value
	}
}

func clone(raw domain.Record) domain.Record {
	if raw == nil {
		return domain.Record{}
	}
	return maps.Clone(raw)
}
