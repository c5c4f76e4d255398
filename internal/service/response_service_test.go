package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/request-service/internal/domain"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

func statusPtr(s domain.Status) *domain.Status {
	return &s
}

func TestProcessResponseCommentAndStatusChange(t *testing.T) {
	e := newEnv()
	req := e.seedTicket(domain.TicketStatusAbierto)

	result, err := e.response.ProcessResponse(context.Background(), domain.KindTicket, req.ID, "agent-1", ResponseInput{
		CommentBody:       "Hemos restablecido su acceso.",
		CommentVisibility: domain.VisibilityPublic,
		NewStatus:         statusPtr(domain.TicketStatusResuelto),
	}, nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "comment added")
	assert.Contains(t, result.Message, "status changed to 'resuelto'")

	stored := e.requests.stored(req.ID)
	assert.Equal(t, domain.TicketStatusResuelto, stored.Status)
	assert.NotNil(t, stored.ResolvedAt)
	assert.NotNil(t, stored.FirstResponseAt)

	// Agent comment plus the lifecycle's system comment.
	comments := e.comments.forRequest(req.ID)
	require.Len(t, comments, 2)
	assert.Equal(t, domain.VisibilityPublic, comments[0].Visibility)
	assert.Equal(t, domain.VisibilitySystem, comments[1].Visibility)

	// Exactly one unified notification, not comment + status_change.
	assert.Equal(t, []string{"SendTicketResponse"}, e.email.sent())
}

func TestProcessResponseCommentOnly(t *testing.T) {
	e := newEnv()
	req := e.seedTicket(domain.TicketStatusAbierto)

	result, err := e.response.ProcessResponse(context.Background(), domain.KindTicket, req.ID, "agent-1", ResponseInput{
		CommentBody:       "Estamos revisando el caso.",
		CommentVisibility: domain.VisibilityPublic,
	}, nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"SendTicketComment"}, e.email.sent())
	assert.NotNil(t, e.requests.stored(req.ID).FirstResponseAt)
}

func TestProcessResponseStatusOnly(t *testing.T) {
	e := newEnv()
	req := e.seedTicket(domain.TicketStatusNuevo)

	result, err := e.response.ProcessResponse(context.Background(), domain.KindTicket, req.ID, "agent-1", ResponseInput{
		NewStatus: statusPtr(domain.TicketStatusAbierto),
	}, nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Nil(t, result.Comment)
	assert.Equal(t, []string{"SendTicketStatusChanged"}, e.email.sent())
	// No agent comment, only the lifecycle's system comment.
	comments := e.comments.forRequest(req.ID)
	require.Len(t, comments, 1)
	assert.Equal(t, domain.VisibilitySystem, comments[0].Visibility)
}

func TestProcessResponseInternalCommentDoesNotNotifyOrStamp(t *testing.T) {
	e := newEnv()
	req := e.seedTicket(domain.TicketStatusAbierto)

	_, err := e.response.ProcessResponse(context.Background(), domain.KindTicket, req.ID, "agent-1", ResponseInput{
		CommentBody:       "Nota interna: verificar con facturación.",
		CommentVisibility: domain.VisibilityInternal,
	}, nil)
	require.NoError(t, err)

	assert.Empty(t, e.email.sent())
	assert.Nil(t, e.requests.stored(req.ID).FirstResponseAt)
}

func TestProcessResponseNothingToDo(t *testing.T) {
	e := newEnv()
	req := e.seedTicket(domain.TicketStatusAbierto)

	_, err := e.response.ProcessResponse(context.Background(), domain.KindTicket, req.ID, "agent-1", ResponseInput{
		CommentBody: "   ",
		NewStatus:   statusPtr(domain.TicketStatusAbierto),
	}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOTHING_TO_DO"))
}

func TestProcessResponseClosedRequestRejectsLoneComment(t *testing.T) {
	e := newEnv()
	req := e.seedTicket(domain.TicketStatusResuelto)

	_, err := e.response.ProcessResponse(context.Background(), domain.KindTicket, req.ID, "agent-1", ResponseInput{
		CommentBody:       "¿Sigue el problema?",
		CommentVisibility: domain.VisibilityPublic,
	}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "REQUEST_CLOSED"))
	assert.Empty(t, e.comments.forRequest(req.ID))
}

func TestProcessResponseClosedRequestAllowsReopen(t *testing.T) {
	e := newEnv()
	req := e.seedTicket(domain.TicketStatusResuelto)

	result, err := e.response.ProcessResponse(context.Background(), domain.KindTicket, req.ID, "agent-1", ResponseInput{
		CommentBody:       "Reabrimos el caso a petición del cliente.",
		CommentVisibility: domain.VisibilityPublic,
		NewStatus:         statusPtr(domain.TicketStatusAbierto),
	}, nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, domain.TicketStatusAbierto, e.requests.stored(req.ID).Status)
}

func TestProcessResponseCommentFailureAbortsEverything(t *testing.T) {
	e := newEnv()
	req := e.seedTicket(domain.TicketStatusAbierto)
	e.comments.failCreate = errors.New("insert failed")

	_, err := e.response.ProcessResponse(context.Background(), domain.KindTicket, req.ID, "agent-1", ResponseInput{
		CommentBody:       "Respuesta",
		CommentVisibility: domain.VisibilityPublic,
		NewStatus:         statusPtr(domain.TicketStatusResuelto),
	}, []AttachmentUpload{{FileName: "informe.pdf", MimeType: "application/pdf", Data: []byte("pdf")}})
	require.Error(t, err)

	stored := e.requests.stored(req.ID)
	assert.Equal(t, domain.TicketStatusAbierto, stored.Status)
	assert.Nil(t, stored.FirstResponseAt)
	assert.Empty(t, e.attachments.records)
	assert.Empty(t, e.backend.stored)
	assert.Empty(t, e.email.sent())
}

func TestProcessResponseStatusFailureAfterCommentIsPartial(t *testing.T) {
	e := newEnv()
	req := e.seedTicket(domain.TicketStatusAbierto)
	e.requests.failUpdate = errors.New("deadlock")

	result, err := e.response.ProcessResponse(context.Background(), domain.KindTicket, req.ID, "agent-1", ResponseInput{
		CommentBody:       "Respuesta guardada",
		CommentVisibility: domain.VisibilityPublic,
		NewStatus:         statusPtr(domain.TicketStatusResuelto),
	}, nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "comment added")
	assert.Contains(t, result.Message, "status change to 'resuelto' failed")

	// The comment is durable, the status is not, and the notification
	// degrades to the comment event.
	require.Len(t, e.comments.forRequest(req.ID), 1)
	assert.Equal(t, domain.TicketStatusAbierto, e.requests.stored(req.ID).Status)
	assert.Equal(t, []string{"SendTicketComment"}, e.email.sent())
}

func TestProcessResponseAttachmentPartialSuccess(t *testing.T) {
	e := newEnv()
	req := e.seedTicket(domain.TicketStatusAbierto)
	e.backend.validateErr = map[string]error{"virus.exe": errors.New("extension not allowed")}

	result, err := e.response.ProcessResponse(context.Background(), domain.KindTicket, req.ID, "agent-1", ResponseInput{
		CommentBody:       "Adjunto los documentos.",
		CommentVisibility: domain.VisibilityPublic,
	}, []AttachmentUpload{
		{FileName: "informe.pdf", MimeType: "application/pdf", Data: []byte("pdf")},
		{FileName: "virus.exe", MimeType: "application/octet-stream", Data: []byte("mz")},
		{FileName: "captura.png", MimeType: "image/png", Data: []byte("png")},
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.AttachmentsSaved)
	assert.Equal(t, 1, result.AttachmentsFailed)
	assert.Contains(t, result.Message, "2 of 3 attachments saved")
	assert.Len(t, e.attachments.records, 2)
}

func TestProcessResponseAttachmentRowFailureCleansBlob(t *testing.T) {
	e := newEnv()
	req := e.seedTicket(domain.TicketStatusAbierto)
	e.attachments.failCreate = errors.New("insert failed")

	result, err := e.response.ProcessResponse(context.Background(), domain.KindTicket, req.ID, "agent-1", ResponseInput{
		CommentBody:       "Adjunto",
		CommentVisibility: domain.VisibilityPublic,
	}, []AttachmentUpload{{FileName: "informe.pdf", MimeType: "application/pdf", Data: []byte("pdf")}})
	require.NoError(t, err)

	assert.Equal(t, 0, result.AttachmentsSaved)
	assert.Equal(t, 1, result.AttachmentsFailed)
	// The orphaned blob was removed along with the failed metadata row.
	assert.Empty(t, e.backend.stored)
	assert.Len(t, e.backend.deleted, 1)
}

func TestProcessResponseFirstResponseIdempotent(t *testing.T) {
	e := newEnv()
	req := e.seedTicket(domain.TicketStatusAbierto)

	_, err := e.response.ProcessResponse(context.Background(), domain.KindTicket, req.ID, "agent-1", ResponseInput{
		CommentBody:       "Primera respuesta",
		CommentVisibility: domain.VisibilityPublic,
	}, nil)
	require.NoError(t, err)
	first := e.requests.stored(req.ID).FirstResponseAt
	require.NotNil(t, first)

	_, err = e.response.ProcessResponse(context.Background(), domain.KindTicket, req.ID, "agent-1", ResponseInput{
		CommentBody:       "Segunda respuesta",
		CommentVisibility: domain.VisibilityPublic,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, first, e.requests.stored(req.ID).FirstResponseAt)
}

func TestProcessResponseUnknownRequest(t *testing.T) {
	e := newEnv()
	_, err := e.response.ProcessResponse(context.Background(), domain.KindTicket, "missing", "agent-1", ResponseInput{
		CommentBody: "hola",
	}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
