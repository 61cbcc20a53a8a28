package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"deskinsight/internal/domain"
)

// Decode converts a normalized record set into typed entities. Ticket IDs are
// the 1-based positions in the tickets group. Ticket dates are stored in
// canonical form (see CanonicalDate).
func Decode(rs domain.RecordSet) (domain.Entities, error) {
	var out domain.Entities

	for i, rec := range rs.Clients {
		id, err := field(rec, domain.GroupClients, i, domain.FieldClientID, ID)
		if err != nil {
			return domain.Entities{}, err
		}
		out.Clients = append(out.Clients, domain.Client{
			ID:       id,
			Name:     Text(rec[domain.FieldName]),
			Phone:    Text(rec[domain.FieldPhone]),
			Province: Text(rec[domain.FieldProvince]),
		})
	}

	for i, rec := range rs.Employees {
		id, err := field(rec, domain.GroupEmployees, i, domain.FieldEmployeeID, ID)
		if err != nil {
			return domain.Entities{}, err
		}
		level, err := field(rec, domain.GroupEmployees, i, domain.FieldLevel, ID)
		if err != nil {
			return domain.Entities{}, err
		}
		out.Employees = append(out.Employees, domain.Employee{
			ID:       id,
			Name:     Text(rec[domain.FieldName]),
			Level:    int(level),
			HireDate: Text(rec[domain.FieldHireDate]),
		})
	}

	for i, rec := range rs.IncidentTypes {
		id, err := field(rec, domain.GroupIncidentTypes, i, domain.FieldIncidentID, ID)
		if err != nil {
			return domain.Entities{}, err
		}
		out.IncidentTypes = append(out.IncidentTypes, domain.IncidentType{ID: id, Name: Text(rec[domain.FieldName])})
	}

	for i, rec := range rs.Tickets {
		ticketID := int64(i + 1)
		clientID, err := field(rec, domain.GroupTickets, i, domain.FieldClient, ID)
		if err != nil {
			return domain.Entities{}, err
		}
		typeID, err := field(rec, domain.GroupTickets, i, domain.FieldIncidentType, ID)
		if err != nil {
			return domain.Entities{}, err
		}
		satisfaction, err := field(rec, domain.GroupTickets, i, domain.FieldSatisfaction, Number)
		if err != nil {
			return domain.Entities{}, err
		}
		maintenance, err := field(rec, domain.GroupTickets, i, domain.FieldMaintenance, Flag)
		if err != nil {
			return domain.Entities{}, err
		}
		critical, err := field(rec, domain.GroupTickets, i, domain.FieldCritical, Flag)
		if err != nil {
			return domain.Entities{}, err
		}
		out.Tickets = append(out.Tickets, domain.Ticket{
			ID:             ticketID,
			ClientID:       clientID,
			IncidentTypeID: typeID,
			OpenDate:       CanonicalDate(Text(rec[domain.FieldOpenDate])),
			CloseDate:      CanonicalDate(Text(rec[domain.FieldCloseDate])),
			Satisfaction:   satisfaction,
			IsMaintenance:  maintenance,
			IsCritical:     critical,
		})

		contacts, err := decodeContacts(rec[domain.FieldContacts], ticketID, i)
		if err != nil {
			return domain.Entities{}, err
		}
		out.Contacts = append(out.Contacts, contacts...)
	}

	return out, nil
}

func decodeContacts(v any, ticketID int64, index int) ([]domain.EmployeeContact, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &domain.MalformedRecordError{Group: domain.GroupTickets, Index: index, Field: domain.FieldContacts, Value: v}
	}
	contacts := make([]domain.EmployeeContact, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &domain.MalformedRecordError{Group: domain.GroupTickets, Index: index, Field: domain.FieldContacts, Value: item}
		}
		empID, err := ID(m[domain.FieldEmployeeID])
		if err != nil {
			return nil, &domain.MalformedRecordError{
				Group: domain.GroupTickets, Index: index, Field: domain.FieldContacts + "." + domain.FieldEmployeeID,
				Value: m[domain.FieldEmployeeID], Err: err,
			}
		}
		hours, _ := Number(m[domain.FieldContactTime])
		contacts = append(contacts, domain.EmployeeContact{
			TicketID:   ticketID,
			EmployeeID: empID,
			Date:       Text(m[domain.FieldContactDate]),
			Hours:      hours,
		})
	}
	return contacts, nil
}

func field[T any](rec domain.Record, group string, index int, name string, parse func(any) (T, error)) (T, error) {
	v, err := parse(rec[name])
	if err != nil {
		var zero T
		return zero, &domain.MalformedRecordError{Group: group, Index: index, Field: name, Value: rec[name], Err: err}
	}
	return v, nil
}

// ID reads a non-negative integer carried as a JSON number or numeric string.
func ID(v any) (int64, error) {
	f, err := Number(v)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != math.Trunc(f) {
		return 0, fmt.Errorf("not a non-negative integer: %v", v)
	}
	return int64(f), nil
}

// Number reads a JSON number or a numeric string.
func Number(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// Text renders a scalar field as stored text.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
