// Package notify routes lifecycle events to outbound channels. The routing
// table maps (kind, event) to concrete sender functions and is validated at
// construction, so an unmapped combination is a startup failure rather than
// a runtime surprise. Dispatch is strictly best-effort: sender errors and
// panics are logged and swallowed, never surfaced to the caller whose state
// change already happened.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/request-service/internal/config"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/registry"
)

// ChannelEmail and ChannelMessaging tag routes for logging and the
// messaging-only-on-creation rule.
const (
	ChannelEmail     = "email"
	ChannelMessaging = "messaging"
)

// SendFunc is a bound sender method.
type SendFunc func(ctx context.Context, nc Context) error

type routeKey struct {
	kind  domain.Kind
	event registry.Event
}

type route struct {
	channel string
	method  string
	send    SendFunc
}

// Router resolves and invokes sender methods per (kind, event).
type Router struct {
	routes  map[routeKey][]route
	runtime *config.Runtime
	logger  *zap.Logger
}

// NewRouter builds the full routing table from the two sender interfaces and
// validates it against the registry's declared method names.
func NewRouter(email EmailSender, messaging MessagingSender, runtime *config.Runtime, logger *zap.Logger) (*Router, error) {
	r := &Router{
		routes:  make(map[routeKey][]route),
		runtime: runtime,
		logger:  logger,
	}

	r.add(domain.KindTicket, registry.EventCreation, ChannelEmail, "SendTicketCreated", email.SendTicketCreated)
	r.add(domain.KindTicket, registry.EventStatusChange, ChannelEmail, "SendTicketStatusChanged", email.SendTicketStatusChanged)
	r.add(domain.KindTicket, registry.EventComment, ChannelEmail, "SendTicketComment", email.SendTicketComment)
	r.add(domain.KindTicket, registry.EventResponse, ChannelEmail, "SendTicketResponse", email.SendTicketResponse)

	r.add(domain.KindComplaint, registry.EventCreation, ChannelEmail, "SendComplaintCreated", email.SendComplaintCreated)
	r.add(domain.KindComplaint, registry.EventStatusChange, ChannelEmail, "SendComplaintStatusChanged", email.SendComplaintStatusChanged)
	r.add(domain.KindComplaint, registry.EventComment, ChannelEmail, "SendComplaintComment", email.SendComplaintComment)
	r.add(domain.KindComplaint, registry.EventResponse, ChannelEmail, "SendComplaintResponse", email.SendComplaintResponse)

	r.add(domain.KindPurchaseRequest, registry.EventCreation, ChannelEmail, "SendPurchaseRequestCreated", email.SendPurchaseRequestCreated)
	r.add(domain.KindPurchaseRequest, registry.EventStatusChange, ChannelEmail, "SendPurchaseRequestStatusChanged", email.SendPurchaseRequestStatusChanged)
	r.add(domain.KindPurchaseRequest, registry.EventComment, ChannelEmail, "SendPurchaseRequestComment", email.SendPurchaseRequestComment)
	r.add(domain.KindPurchaseRequest, registry.EventResponse, ChannelEmail, "SendPurchaseRequestResponse", email.SendPurchaseRequestResponse)

	if messaging != nil {
		r.add(domain.KindTicket, registry.EventCreation, ChannelMessaging, "SendTicketCreated", messaging.SendTicketCreated)
		r.add(domain.KindComplaint, registry.EventCreation, ChannelMessaging, "SendComplaintCreated", messaging.SendComplaintCreated)
		r.add(domain.KindPurchaseRequest, registry.EventCreation, ChannelMessaging, "SendPurchaseRequestCreated", messaging.SendPurchaseRequestCreated)
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Router) add(kind domain.Kind, event registry.Event, channel, method string, send SendFunc) {
	key := routeKey{kind: kind, event: event}
	r.routes[key] = append(r.routes[key], route{channel: channel, method: method, send: send})
}

// validate checks the table against the registry: every kind must route
// email for all four events, and messaging may only appear on creation.
func (r *Router) validate() error {
	events := []registry.Event{
		registry.EventCreation,
		registry.EventStatusChange,
		registry.EventComment,
		registry.EventResponse,
	}
	for _, kind := range domain.Kinds() {
		desc, err := registry.Resolve(kind)
		if err != nil {
			return err
		}
		for _, event := range events {
			routes := r.routes[routeKey{kind: kind, event: event}]
			hasEmail := false
			for _, rt := range routes {
				if rt.channel == ChannelEmail {
					hasEmail = true
				}
				if rt.channel == ChannelMessaging && event != registry.EventCreation {
					return fmt.Errorf("notify: messaging route registered for %s/%s; messaging fires only on creation", kind, event)
				}
				if rt.send == nil {
					return fmt.Errorf("notify: nil sender for %s/%s (%s)", kind, event, rt.method)
				}
			}
			if !hasEmail {
				return fmt.Errorf("notify: missing email route %s for %s/%s", desc.NotificationMethods[event], kind, event)
			}
		}
	}
	return nil
}

// ResolveMethods returns the method names that would fire for the pair.
// Absence is not an error; the dispatcher simply has nothing to do.
func (r *Router) ResolveMethods(kind domain.Kind, event registry.Event) []string {
	routes := r.routes[routeKey{kind: kind, event: event}]
	names := make([]string, 0, len(routes))
	for _, rt := range routes {
		names = append(names, rt.channel+"."+rt.method)
	}
	return names
}

// Dispatch fires every configured channel for the pair. Failures are logged
// and swallowed; the caller's primary operation is never affected.
func (r *Router) Dispatch(ctx context.Context, event registry.Event, nc Context) {
	if nc.Request == nil {
		return
	}
	settings := r.runtime.Snapshot().Notifications

	for _, rt := range r.routes[routeKey{kind: nc.Request.Kind, event: event}] {
		switch rt.channel {
		case ChannelEmail:
			if !settings.EmailEnabled {
				continue
			}
		case ChannelMessaging:
			if !settings.MessagingEnabled[nc.Request.Kind] {
				continue
			}
		}
		r.invoke(ctx, rt, event, nc)
	}
}

func (r *Router) invoke(ctx context.Context, rt route, event registry.Event, nc Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("notification sender panicked",
				zap.String("channel", rt.channel),
				zap.String("method", rt.method),
				zap.String("event", string(event)),
				zap.String("request_number", nc.Request.Number),
				zap.Any("panic", rec))
		}
	}()
	if err := rt.send(ctx, nc); err != nil {
		r.logger.Warn("notification delivery failed",
			zap.String("channel", rt.channel),
			zap.String("method", rt.method),
			zap.String("event", string(event)),
			zap.String("request_number", nc.Request.Number),
			zap.Error(err))
	}
}
