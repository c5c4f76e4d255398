// Package registry declares the closed set of request kinds and everything
// the rest of the service needs to treat them polymorphically: storage table
// names, number prefixes, status vocabularies and notification method names.
// Adding a fourth kind means adding one descriptor here and implementing its
// sender methods; the lifecycle engine does not change.
package registry

import (
	"github.com/spec-kit/request-service/internal/domain"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// Event identifies a notification trigger.
type Event string

const (
	EventCreation     Event = "creation"
	EventStatusChange Event = "status_change"
	EventComment      Event = "comment"
	EventResponse     Event = "response"
)

// Descriptor captures the per-kind configuration.
type Descriptor struct {
	Kind          domain.Kind
	Table         string
	NumberField   string
	NumberPrefix  string
	HistoryTable  string
	CommentsTable string
	ForeignKey    string

	// NotificationMethods names the sender method per event, used for
	// startup validation and log context. Actual dispatch goes through the
	// notify router's function table.
	NotificationMethods map[Event]string

	Statuses  []domain.Status
	ClosedSet []domain.Status
	// ResolvedStatus stamps ResolvedAt when reached; ClosedStatus stamps
	// ClosedAt. ClosedStatus is empty for kinds without a closed timestamp.
	ResolvedStatus domain.Status
	ClosedStatus   domain.Status
	InitialStatus  domain.Status
}

// ValidStatus reports whether s belongs to this kind's vocabulary.
func (d Descriptor) ValidStatus(s domain.Status) bool {
	for _, candidate := range d.Statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsClosed reports whether s is in this kind's closed-status set.
func (d Descriptor) IsClosed(s domain.Status) bool {
	for _, candidate := range d.ClosedSet {
		if candidate == s {
			return true
		}
	}
	return false
}

var descriptors = map[domain.Kind]Descriptor{
	domain.KindTicket: {
		Kind:          domain.KindTicket,
		Table:         "tickets",
		NumberField:   "number",
		NumberPrefix:  "TK",
		HistoryTable:  "ticket_history",
		CommentsTable: "ticket_comments",
		ForeignKey:    "ticket_id",
		NotificationMethods: map[Event]string{
			EventCreation:     "SendTicketCreated",
			EventStatusChange: "SendTicketStatusChanged",
			EventComment:      "SendTicketComment",
			EventResponse:     "SendTicketResponse",
		},
		Statuses: []domain.Status{
			domain.TicketStatusNuevo,
			domain.TicketStatusAbierto,
			domain.TicketStatusPendiente,
			domain.TicketStatusResuelto,
			domain.TicketStatusConvertido,
		},
		ClosedSet:      []domain.Status{domain.TicketStatusResuelto, domain.TicketStatusConvertido},
		ResolvedStatus: domain.TicketStatusResuelto,
		InitialStatus:  domain.TicketStatusNuevo,
	},
	domain.KindComplaint: {
		Kind:          domain.KindComplaint,
		Table:         "complaints",
		NumberField:   "number",
		NumberPrefix:  "QJ",
		HistoryTable:  "complaint_history",
		CommentsTable: "complaint_comments",
		ForeignKey:    "complaint_id",
		NotificationMethods: map[Event]string{
			EventCreation:     "SendComplaintCreated",
			EventStatusChange: "SendComplaintStatusChanged",
			EventComment:      "SendComplaintComment",
			EventResponse:     "SendComplaintResponse",
		},
		Statuses: []domain.Status{
			domain.ComplaintStatusNueva,
			domain.ComplaintStatusEnRevision,
			domain.ComplaintStatusEnProceso,
			domain.ComplaintStatusResuelta,
			domain.ComplaintStatusCerrada,
		},
		ClosedSet:      []domain.Status{domain.ComplaintStatusResuelta, domain.ComplaintStatusCerrada},
		ResolvedStatus: domain.ComplaintStatusResuelta,
		ClosedStatus:   domain.ComplaintStatusCerrada,
		InitialStatus:  domain.ComplaintStatusNueva,
	},
	domain.KindPurchaseRequest: {
		Kind:          domain.KindPurchaseRequest,
		Table:         "purchase_requests",
		NumberField:   "number",
		NumberPrefix:  "SC",
		HistoryTable:  "purchase_request_history",
		CommentsTable: "purchase_request_comments",
		ForeignKey:    "purchase_request_id",
		NotificationMethods: map[Event]string{
			EventCreation:     "SendPurchaseRequestCreated",
			EventStatusChange: "SendPurchaseRequestStatusChanged",
			EventComment:      "SendPurchaseRequestComment",
			EventResponse:     "SendPurchaseRequestResponse",
		},
		Statuses: []domain.Status{
			domain.PurchaseStatusNueva,
			domain.PurchaseStatusEnProceso,
			domain.PurchaseStatusAprobada,
			domain.PurchaseStatusRechazada,
			domain.PurchaseStatusCompletada,
		},
		ClosedSet:      []domain.Status{domain.PurchaseStatusRechazada, domain.PurchaseStatusCompletada},
		ResolvedStatus: domain.PurchaseStatusAprobada,
		ClosedStatus:   domain.PurchaseStatusCompletada,
		InitialStatus:  domain.PurchaseStatusNueva,
	},
}

// Resolve returns the descriptor for kind, or an UNKNOWN_KIND error.
func Resolve(kind domain.Kind) (Descriptor, error) {
	desc, ok := descriptors[kind]
	if !ok {
		return Descriptor{}, apperrors.NewUnknownKind(string(kind))
	}
	return desc, nil
}

// MustResolve panics on unknown kinds; for use in startup wiring only.
func MustResolve(kind domain.Kind) Descriptor {
	desc, err := Resolve(kind)
	if err != nil {
		panic(err)
	}
	return desc
}
