package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/request-service/internal/domain"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

func TestResolveKnownKinds(t *testing.T) {
	for _, kind := range domain.Kinds() {
		desc, err := Resolve(kind)
		require.NoError(t, err, "kind %s", kind)
		assert.Equal(t, kind, desc.Kind)
		assert.NotEmpty(t, desc.Table)
		assert.NotEmpty(t, desc.NumberPrefix)
		assert.NotEmpty(t, desc.HistoryTable)
		assert.NotEmpty(t, desc.CommentsTable)
		assert.NotEmpty(t, desc.ForeignKey)
		assert.NotEmpty(t, desc.Statuses)
		assert.NotEmpty(t, desc.ClosedSet)
		assert.NotEmpty(t, desc.InitialStatus)
		assert.Len(t, desc.NotificationMethods, 4)
	}
}

func TestResolveUnknownKind(t *testing.T) {
	_, err := Resolve(domain.Kind("incident"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNKNOWN_KIND"))
}

func TestTicketDescriptor(t *testing.T) {
	desc, err := Resolve(domain.KindTicket)
	require.NoError(t, err)

	assert.Equal(t, "TK", desc.NumberPrefix)
	assert.Equal(t, "tickets", desc.Table)
	assert.Equal(t, "ticket_id", desc.ForeignKey)
	assert.Equal(t, domain.TicketStatusNuevo, desc.InitialStatus)
	assert.Equal(t, domain.TicketStatusResuelto, desc.ResolvedStatus)
	// Tickets never stamp ClosedAt; they have no single closed status.
	assert.Empty(t, desc.ClosedStatus)

	assert.True(t, desc.IsClosed(domain.TicketStatusResuelto))
	assert.True(t, desc.IsClosed(domain.TicketStatusConvertido))
	assert.False(t, desc.IsClosed(domain.TicketStatusPendiente))
}

func TestComplaintDescriptor(t *testing.T) {
	desc, err := Resolve(domain.KindComplaint)
	require.NoError(t, err)

	assert.Equal(t, "QJ", desc.NumberPrefix)
	assert.Equal(t, domain.ComplaintStatusNueva, desc.InitialStatus)
	assert.Equal(t, domain.ComplaintStatusResuelta, desc.ResolvedStatus)
	assert.Equal(t, domain.ComplaintStatusCerrada, desc.ClosedStatus)
	assert.True(t, desc.IsClosed(domain.ComplaintStatusResuelta))
	assert.True(t, desc.IsClosed(domain.ComplaintStatusCerrada))
	assert.False(t, desc.IsClosed(domain.ComplaintStatusEnProceso))
}

func TestPurchaseRequestDescriptor(t *testing.T) {
	desc, err := Resolve(domain.KindPurchaseRequest)
	require.NoError(t, err)

	assert.Equal(t, "SC", desc.NumberPrefix)
	assert.Equal(t, domain.PurchaseStatusNueva, desc.InitialStatus)
	assert.Equal(t, domain.PurchaseStatusAprobada, desc.ResolvedStatus)
	assert.Equal(t, domain.PurchaseStatusCompletada, desc.ClosedStatus)
	assert.True(t, desc.IsClosed(domain.PurchaseStatusRechazada))
	assert.True(t, desc.IsClosed(domain.PurchaseStatusCompletada))
	// Aprobada resolves but does not close a purchase request.
	assert.False(t, desc.IsClosed(domain.PurchaseStatusAprobada))
}

func TestValidStatusRejectsForeignVocabulary(t *testing.T) {
	ticket := MustResolve(domain.KindTicket)
	assert.True(t, ticket.ValidStatus(domain.TicketStatusAbierto))
	assert.False(t, ticket.ValidStatus(domain.ComplaintStatusEnRevision))
	assert.False(t, ticket.ValidStatus(domain.Status("open")))
}

func TestMustResolvePanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() {
		MustResolve(domain.Kind("bogus"))
	})
}
