// Package sla computes due dates and breach states for requests. Everything
// here is a pure function of its inputs; breach status is recomputed on read
// and never persisted.
package sla

import (
	"time"

	"github.com/spec-kit/request-service/internal/config"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/registry"
)

// DueDates carries the two computed deadlines. A zero offset disables the
// corresponding deadline (nil pointer).
type DueDates struct {
	FirstResponseDue *time.Time
	ResolutionDue    *time.Time
}

// ComputeDueDates adds the configured calendar-day offsets (24h * N, not
// business days) to createdAt. Complaints use subtype offsets when the
// subtype is known, falling back to the kind-level offsets.
func ComputeDueDates(settings config.SLASettings, kind domain.Kind, subKind *string, createdAt time.Time) DueDates {
	firstDays := settings.FirstResponseDays[kind]
	resolutionDays := settings.ResolutionDays[kind]

	if kind == domain.KindComplaint && subKind != nil {
		subtype := domain.ComplaintSubtype(*subKind)
		if days, ok := settings.ComplaintFirstResponseDays[subtype]; ok {
			firstDays = days
		}
		if days, ok := settings.ComplaintResolutionDays[subtype]; ok {
			resolutionDays = days
		}
	}

	var due DueDates
	if firstDays > 0 {
		t := createdAt.Add(time.Duration(firstDays) * 24 * time.Hour)
		due.FirstResponseDue = &t
	}
	if resolutionDays > 0 {
		t := createdAt.Add(time.Duration(resolutionDays) * 24 * time.Hour)
		due.ResolutionDue = &t
	}
	return due
}

// FirstResponseBreached reports whether the first-response deadline has
// passed without any first response, for a request that is still open.
func FirstResponseBreached(desc registry.Descriptor, req *domain.Request, now time.Time) bool {
	return breached(desc, req.Status, req.FirstResponseDue, req.FirstResponseAt, now)
}

// ResolutionBreached is the resolution-side counterpart, keyed on ResolvedAt.
func ResolutionBreached(desc registry.Descriptor, req *domain.Request, now time.Time) bool {
	return breached(desc, req.Status, req.ResolutionDue, req.ResolvedAt, now)
}

func breached(desc registry.Descriptor, status domain.Status, due, satisfiedAt *time.Time, now time.Time) bool {
	if due == nil || satisfiedAt != nil {
		return false
	}
	if desc.IsClosed(status) {
		return false
	}
	return due.Before(now)
}
