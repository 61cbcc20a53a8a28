package domain

type Client struct {
	ID       int64  `db:"id_cliente"`
	Name     string `db:"nombre"`
	Phone    string `db:"telefono"`
	Province string `db:"provincia"`
}

type Employee struct {
	ID       int64  `db:"id_empleado"`
	Name     string `db:"nombre"`
	Level    int    `db:"nivel"`
	HireDate string `db:"fecha_contrato"`
}

type IncidentType struct {
	ID   int64  `db:"id_incidente"`
	Name string `db:"nombre"`
}

type Ticket struct {
	ID             int64   `db:"id_ticket"`
	ClientID       int64   `db:"cliente_id"`
	IncidentTypeID int64   `db:"incidencia_id"`
	OpenDate       string  `db:"fecha_apertura"`
	CloseDate      string  `db:"fecha_cierre"`
	Satisfaction   float64 `db:"satisfaccion"`
	IsMaintenance  int     `db:"es_mantenimiento"`
	IsCritical     int     `db:"es_critico"`
}

// EmployeeContact links a ticket to an employee who worked on it. It is the
// implicit employee reference of a ticket.
type EmployeeContact struct {
	TicketID   int64   `db:"ticket_id"`
	EmployeeID int64   `db:"empleado_id"`
	Date       string  `db:"fecha"`
	Hours      float64 `db:"tiempo"`
}

// Entities is the typed form of a normalized RecordSet, ready for the store.
type Entities struct {
	Clients       []Client
	Employees     []Employee
	IncidentTypes []IncidentType
	Tickets       []Ticket
	Contacts      []EmployeeContact
}

// LoadStats counts the rows written by one load.
type LoadStats struct {
	Clients       int `json:"clients"`
	Employees     int `json:"employees"`
	IncidentTypes int `json:"incident_types"`
	Tickets       int `json:"tickets"`
	Contacts      int `json:"contacts"`
}
