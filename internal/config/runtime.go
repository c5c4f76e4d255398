package config

import (
	"sync"

	"github.com/spec-kit/request-service/internal/domain"
)

// NotificationSettings toggles outbound channels. Email applies to every
// kind; messaging (WhatsApp) only ever fires on creation and only for the
// kinds enabled here.
type NotificationSettings struct {
	EmailEnabled      bool
	EmailFrom         string
	MessagingEnabled  map[domain.Kind]bool
	MessagingProvider string
}

// SLASettings holds per-kind calendar-day offsets. Complaints are further
// keyed by subtype; missing subtypes fall back to the kind-level offsets.
type SLASettings struct {
	FirstResponseDays map[domain.Kind]int
	ResolutionDays    map[domain.Kind]int

	ComplaintFirstResponseDays map[domain.ComplaintSubtype]int
	ComplaintResolutionDays    map[domain.ComplaintSubtype]int
}

// Settings is the system-wide mutable configuration: notification toggles
// and SLA offsets. It replaces ambient cached globals; callers receive a
// *Runtime and read consistent snapshots.
type Settings struct {
	Notifications NotificationSettings
	SLA           SLASettings
}

// Runtime wraps Settings with a reload operation. Snapshot returns a copy,
// so a reload never tears a reader mid-operation.
type Runtime struct {
	mu       sync.RWMutex
	settings Settings
}

// NewRuntime seeds the runtime with initial settings.
func NewRuntime(initial Settings) *Runtime {
	return &Runtime{settings: initial}
}

// Snapshot returns the current settings by value.
func (r *Runtime) Snapshot() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// Reload replaces the settings wholesale.
func (r *Runtime) Reload(next Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = next
}

// DefaultSettings reads notification and SLA settings from the environment.
// Called at boot and again on reload requests.
func DefaultSettings() Settings {
	return Settings{
		Notifications: NotificationSettings{
			EmailEnabled: getEnvAsBool("NOTIFY_EMAIL_ENABLED", true),
			EmailFrom:    getEnv("NOTIFY_EMAIL_FROM", "soporte@example.com"),
			MessagingEnabled: map[domain.Kind]bool{
				domain.KindTicket:          getEnvAsBool("NOTIFY_WHATSAPP_TICKETS", false),
				domain.KindComplaint:       getEnvAsBool("NOTIFY_WHATSAPP_COMPLAINTS", false),
				domain.KindPurchaseRequest: getEnvAsBool("NOTIFY_WHATSAPP_PURCHASES", false),
			},
			MessagingProvider: getEnv("NOTIFY_WHATSAPP_PROVIDER", ""),
		},
		SLA: SLASettings{
			FirstResponseDays: map[domain.Kind]int{
				domain.KindTicket:          getEnvAsInt("SLA_TICKET_FIRST_RESPONSE_DAYS", 1),
				domain.KindComplaint:       getEnvAsInt("SLA_COMPLAINT_FIRST_RESPONSE_DAYS", 2),
				domain.KindPurchaseRequest: getEnvAsInt("SLA_PURCHASE_FIRST_RESPONSE_DAYS", 3),
			},
			ResolutionDays: map[domain.Kind]int{
				domain.KindTicket:          getEnvAsInt("SLA_TICKET_RESOLUTION_DAYS", 7),
				domain.KindComplaint:       getEnvAsInt("SLA_COMPLAINT_RESOLUTION_DAYS", 15),
				domain.KindPurchaseRequest: getEnvAsInt("SLA_PURCHASE_RESOLUTION_DAYS", 30),
			},
			ComplaintFirstResponseDays: map[domain.ComplaintSubtype]int{
				domain.ComplaintProducto:    getEnvAsInt("SLA_COMPLAINT_PRODUCTO_FIRST_RESPONSE_DAYS", 2),
				domain.ComplaintServicio:    getEnvAsInt("SLA_COMPLAINT_SERVICIO_FIRST_RESPONSE_DAYS", 2),
				domain.ComplaintFacturacion: getEnvAsInt("SLA_COMPLAINT_FACTURACION_FIRST_RESPONSE_DAYS", 5),
			},
			ComplaintResolutionDays: map[domain.ComplaintSubtype]int{
				domain.ComplaintProducto:    getEnvAsInt("SLA_COMPLAINT_PRODUCTO_RESOLUTION_DAYS", 15),
				domain.ComplaintServicio:    getEnvAsInt("SLA_COMPLAINT_SERVICIO_RESOLUTION_DAYS", 15),
				domain.ComplaintFacturacion: getEnvAsInt("SLA_COMPLAINT_FACTURACION_RESOLUTION_DAYS", 30),
			},
		},
	}
}
