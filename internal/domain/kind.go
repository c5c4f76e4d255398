package domain

// Kind identifies one of the three request variants handled by the service.
type Kind string

const (
	KindTicket          Kind = "ticket"
	KindComplaint       Kind = "complaint"
	KindPurchaseRequest Kind = "purchase_request"
)

// Kinds lists every supported kind.
func Kinds() []Kind {
	return []Kind{KindTicket, KindComplaint, KindPurchaseRequest}
}

// Status is a per-kind lifecycle state. Vocabularies are declared in the
// registry; the engine only checks membership, never transition edges.
type Status string

// Ticket statuses.
const (
	TicketStatusNuevo      Status = "nuevo"
	TicketStatusAbierto    Status = "abierto"
	TicketStatusPendiente  Status = "pendiente"
	TicketStatusResuelto   Status = "resuelto"
	TicketStatusConvertido Status = "convertido"
)

// Complaint statuses.
const (
	ComplaintStatusNueva      Status = "nueva"
	ComplaintStatusEnRevision Status = "en_revision"
	ComplaintStatusEnProceso  Status = "en_proceso"
	ComplaintStatusResuelta   Status = "resuelta"
	ComplaintStatusCerrada    Status = "cerrada"
)

// Purchase request statuses.
const (
	PurchaseStatusNueva      Status = "nueva"
	PurchaseStatusEnProceso  Status = "en_proceso"
	PurchaseStatusAprobada   Status = "aprobada"
	PurchaseStatusRechazada  Status = "rechazada"
	PurchaseStatusCompletada Status = "completada"
)

// Priority is shared across every kind.
type Priority string

const (
	PriorityBaja    Priority = "baja"
	PriorityMedia   Priority = "media"
	PriorityAlta    Priority = "alta"
	PriorityUrgente Priority = "urgente"
)

// ValidPriority reports whether p belongs to the shared vocabulary.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityBaja, PriorityMedia, PriorityAlta, PriorityUrgente:
		return true
	}
	return false
}

// Channel records where a request entered the system.
type Channel string

const (
	ChannelWeb      Channel = "web"
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// ComplaintSubtype refines SLA offsets for complaints.
type ComplaintSubtype string

const (
	ComplaintProducto    ComplaintSubtype = "producto"
	ComplaintServicio    ComplaintSubtype = "servicio"
	ComplaintFacturacion ComplaintSubtype = "facturacion"
)
