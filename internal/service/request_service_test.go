package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/request-service/internal/domain"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

func TestCreateRequest(t *testing.T) {
	e := newEnv()

	req, err := e.request.Create(context.Background(), CreateRequestInput{
		Kind:        domain.KindTicket,
		Subject:     "  Impresora sin tóner  ",
		Description: "La impresora de planta 2 no imprime.",
		RequesterID: "user-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, "TK-2026-00001", req.Number)
	assert.Equal(t, "Impresora sin tóner", req.Subject)
	assert.Equal(t, domain.TicketStatusNuevo, req.Status)
	// Omitted fields take their defaults.
	assert.Equal(t, domain.PriorityMedia, req.Priority)
	assert.Equal(t, domain.ChannelWeb, req.Channel)

	require.NotNil(t, req.FirstResponseDue)
	require.NotNil(t, req.ResolutionDue)

	assert.Equal(t, []string{"SendTicketCreated"}, e.email.sent())
}

func TestCreateRequestValidation(t *testing.T) {
	e := newEnv()

	_, err := e.request.Create(context.Background(), CreateRequestInput{
		Kind:        domain.KindTicket,
		Subject:     "   ",
		RequesterID: "user-1",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = e.request.Create(context.Background(), CreateRequestInput{
		Kind:        domain.KindTicket,
		Subject:     "Algo",
		Priority:    domain.Priority("critical"),
		RequesterID: "user-1",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = e.request.Create(context.Background(), CreateRequestInput{
		Kind:        domain.Kind("incident"),
		Subject:     "Algo",
		RequesterID: "user-1",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNKNOWN_KIND"))
}

func TestCreateRequestPerKindNumbers(t *testing.T) {
	e := newEnv()

	ticket, err := e.request.Create(context.Background(), CreateRequestInput{
		Kind: domain.KindTicket, Subject: "a", RequesterID: "user-1",
	})
	require.NoError(t, err)
	complaint, err := e.request.Create(context.Background(), CreateRequestInput{
		Kind: domain.KindComplaint, Subject: "b", RequesterID: "user-1",
	})
	require.NoError(t, err)
	purchase, err := e.request.Create(context.Background(), CreateRequestInput{
		Kind: domain.KindPurchaseRequest, Subject: "c", RequesterID: "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "TK", ticket.Number[:2])
	assert.Equal(t, "QJ", complaint.Number[:2])
	assert.Equal(t, "SC", purchase.Number[:2])
}

func TestThreadPublicOnlyFiltersInternalAndSystem(t *testing.T) {
	e := newEnv()
	req := e.seedTicket(domain.TicketStatusAbierto)
	desc := ticketDesc
	author := "agent-1"
	for _, c := range []domain.Comment{
		{RequestID: req.ID, AuthorID: &author, Visibility: domain.VisibilityPublic, Body: "visible"},
		{RequestID: req.ID, AuthorID: &author, Visibility: domain.VisibilityInternal, Body: "oculto"},
		{RequestID: req.ID, Visibility: domain.VisibilitySystem, Body: "Status changed"},
	} {
		comment := c
		require.NoError(t, e.comments.Create(context.Background(), desc, &comment))
	}

	publicThread, err := e.request.Thread(context.Background(), domain.KindTicket, req.ID, true)
	require.NoError(t, err)
	require.Len(t, publicThread, 1)
	assert.Equal(t, "visible", publicThread[0].Body)

	fullThread, err := e.request.Thread(context.Background(), domain.KindTicket, req.ID, false)
	require.NoError(t, err)
	assert.Len(t, fullThread, 3)
}

func TestHistoryMostRecentFirst(t *testing.T) {
	e := newEnv()
	req := e.seedTicket(domain.TicketStatusNuevo)
	actor := "agent-1"

	require.NoError(t, e.lifecycle.ChangeStatus(context.Background(), ticketDesc, req, domain.TicketStatusAbierto, &actor, "", false))
	require.NoError(t, e.lifecycle.ChangePriority(context.Background(), ticketDesc, req, domain.PriorityAlta, &actor))

	history, err := e.request.History(context.Background(), domain.KindTicket, req.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.FieldPriority, history[0].FieldName)
	assert.Equal(t, domain.FieldStatus, history[1].FieldName)
}

func TestSLAStateOf(t *testing.T) {
	e := newEnv()
	past := time.Now().Add(-time.Hour)
	req := e.seedTicket(domain.TicketStatusAbierto)
	req.FirstResponseDue = &past

	state := e.request.SLAStateOf(req)
	assert.True(t, state.FirstResponseBreached)
	assert.False(t, state.ResolutionBreached)

	responded := time.Now()
	req.FirstResponseAt = &responded
	state = e.request.SLAStateOf(req)
	assert.False(t, state.FirstResponseBreached)
}
