package normalize

import (
	"errors"
	"fmt"

	"deskinsight/internal/domain"
)

// Validate checks the relational invariants the store relies on: unique IDs,
// resolvable client, incident-type and employee references, and open <= close
// for tickets whose two dates both parse. Every violation is reported.
func Validate(e domain.Entities) error {
	var errs []error

	clients := make(map[int64]bool, len(e.Clients))
	for _, c := range e.Clients {
		if clients[c.ID] {
			errs = append(errs, fmt.Errorf("duplicate client id %d", c.ID))
		}
		clients[c.ID] = true
	}
	employees := make(map[int64]bool, len(e.Employees))
	for _, emp := range e.Employees {
		if employees[emp.ID] {
			errs = append(errs, fmt.Errorf("duplicate employee id %d", emp.ID))
		}
		employees[emp.ID] = true
	}
	types := make(map[int64]bool, len(e.IncidentTypes))
	for _, it := range e.IncidentTypes {
		if types[it.ID] {
			errs = append(errs, fmt.Errorf("duplicate incident type id %d", it.ID))
		}
		types[it.ID] = true
	}

	for _, t := range e.Tickets {
		if !clients[t.ClientID] {
			errs = append(errs, fmt.Errorf("ticket %d: unknown client %d", t.ID, t.ClientID))
		}
		if !types[t.IncidentTypeID] {
			errs = append(errs, fmt.Errorf("ticket %d: unknown incident type %d", t.ID, t.IncidentTypeID))
		}
		open, okOpen := ParseDate(t.OpenDate)
		closed, okClose := ParseDate(t.CloseDate)
		if okOpen && okClose && closed.Before(open) {
			errs = append(errs, fmt.Errorf("ticket %d: close date %s precedes open date %s", t.ID, t.CloseDate, t.OpenDate))
		}
	}
	for _, c := range e.Contacts {
		if !employees[c.EmployeeID] {
			errs = append(errs, fmt.Errorf("ticket %d: unknown employee %d", c.TicketID, c.EmployeeID))
		}
	}

	return errors.Join(errs...)
}
