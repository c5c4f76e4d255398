package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/request-service/internal/domain"
)

func TestRuntimeSnapshotAndReload(t *testing.T) {
	rt := NewRuntime(Settings{
		Notifications: NotificationSettings{EmailEnabled: true},
	})

	before := rt.Snapshot()
	assert.True(t, before.Notifications.EmailEnabled)

	rt.Reload(Settings{Notifications: NotificationSettings{EmailEnabled: false}})
	assert.False(t, rt.Snapshot().Notifications.EmailEnabled)
	// The earlier snapshot is unaffected by the reload.
	assert.True(t, before.Notifications.EmailEnabled)
}

func TestDefaultSettingsFromEnv(t *testing.T) {
	t.Setenv("NOTIFY_EMAIL_ENABLED", "false")
	t.Setenv("NOTIFY_WHATSAPP_TICKETS", "true")
	t.Setenv("SLA_COMPLAINT_FACTURACION_RESOLUTION_DAYS", "45")

	settings := DefaultSettings()
	assert.False(t, settings.Notifications.EmailEnabled)
	assert.True(t, settings.Notifications.MessagingEnabled[domain.KindTicket])
	assert.False(t, settings.Notifications.MessagingEnabled[domain.KindComplaint])
	assert.Equal(t, 45, settings.SLA.ComplaintResolutionDays[domain.ComplaintFacturacion])
	assert.Equal(t, 7, settings.SLA.ResolutionDays[domain.KindTicket])
}
