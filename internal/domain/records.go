package domain

// Record is one raw field-mapping from the input document. Values keep the
// shapes produced by encoding/json (string, float64, bool, []any, map[string]any)
// until the normalizer coerces the fields it owns.
type Record map[string]any

// RecordSet is the raw input document with its four named record groups.
type RecordSet struct {
	Clients       []Record `json:"clientes"`
	Employees     []Record `json:"empleados"`
	Tickets       []Record `json:"tickets_emitidos"`
	IncidentTypes []Record `json:"tipos_incidentes"`
}

// Raw field names shared by the normalizer, the decoder and the dataset builder.
const (
	FieldClientID     = "id_cli"
	FieldEmployeeID   = "id_emp"
	FieldIncidentID   = "id_inci"
	FieldName         = "nombre"
	FieldPhone        = "telefono"
	FieldProvince     = "provincia"
	FieldLevel        = "nivel"
	FieldHireDate     = "fecha_contrato"
	FieldClient       = "cliente"
	FieldOpenDate     = "fecha_apertura"
	FieldCloseDate    = "fecha_cierre"
	FieldSatisfaction = "satisfaccion_cliente"
	FieldMaintenance  = "es_mantenimiento"
	FieldCritical     = "es_critico"
	FieldIncidentType = "tipo_incidencia"
	FieldContacts     = "contactos_con_empleados"
	FieldContactDate  = "fecha"
	FieldContactTime  = "tiempo"
)

// Sentinel is stored in place of missing text fields. It is data, not an
// absence marker: "None" is indistinguishable from a literal "None" value.
const Sentinel = "None"

// Group names used in error messages.
const (
	GroupClients       = "clientes"
	GroupEmployees     = "empleados"
	GroupTickets       = "tickets_emitidos"
	GroupIncidentTypes = "tipos_incidentes"
)
