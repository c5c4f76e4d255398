package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/request-service/internal/config"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/notify"
	"github.com/spec-kit/request-service/internal/registry"
	"github.com/spec-kit/request-service/internal/repository"
	"github.com/spec-kit/request-service/internal/storage"
)

// In-memory repository fakes. GetByID returns copies so a failed Update must
// actually roll back the caller's struct for state to stay consistent.

type fakeRequestRepo struct {
	mu         sync.Mutex
	store      map[string]domain.Request
	seq        int
	failUpdate error
	failByID   map[string]error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{store: make(map[string]domain.Request)}
}

func (r *fakeRequestRepo) Create(_ context.Context, _ registry.Descriptor, req *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	req.ID = fmt.Sprintf("req-%d", r.seq)
	r.store[req.ID] = *req
	return nil
}

func (r *fakeRequestRepo) Update(_ context.Context, _ registry.Descriptor, req *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return r.failUpdate
	}
	if _, ok := r.store[req.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.store[req.ID] = *req
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, _ registry.Descriptor, id string) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failByID[id]; err != nil {
		return nil, err
	}
	req, ok := r.store[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := req
	return &copied, nil
}

func (r *fakeRequestRepo) GetByNumber(_ context.Context, _ registry.Descriptor, number string) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.store {
		if req.Number == number {
			copied := req
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeRequestRepo) ListWithFilter(_ context.Context, _ registry.Descriptor, filter repository.RequestFilter) ([]domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Request
	for _, req := range r.store {
		if filter.RequesterID != nil && req.RequesterID != *filter.RequesterID {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// stored returns the persisted value, bypassing the copy semantics.
func (r *fakeRequestRepo) stored(id string) domain.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store[id]
}

func (r *fakeRequestRepo) put(req domain.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[req.ID] = req
}

type fakeCommentRepo struct {
	mu         sync.Mutex
	comments   []domain.Comment
	seq        int
	failCreate error
}

func (r *fakeCommentRepo) Create(_ context.Context, _ registry.Descriptor, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	r.seq++
	comment.ID = fmt.Sprintf("comment-%d", r.seq)
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByRequest(_ context.Context, _ registry.Descriptor, requestID string) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Comment
	for _, c := range r.comments {
		if c.RequestID == requestID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) forRequest(requestID string) []domain.Comment {
	out, _ := r.ListByRequest(context.Background(), registry.Descriptor{}, requestID)
	return out
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	seq     int
}

func (r *fakeHistoryRepo) Create(_ context.Context, _ registry.Descriptor, entry *domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = fmt.Sprintf("hist-%d", r.seq)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByRequest(_ context.Context, _ registry.Descriptor, requestID string, limit, offset int) ([]domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.HistoryEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].RequestID == requestID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) forRequest(requestID string) []domain.HistoryEntry {
	out, _ := r.ListByRequest(context.Background(), registry.Descriptor{}, requestID, 0, 0)
	return out
}

type fakeAgentRepo struct {
	agents map[string]domain.Agent
}

func newFakeAgentRepo(agents ...domain.Agent) *fakeAgentRepo {
	r := &fakeAgentRepo{agents: make(map[string]domain.Agent)}
	for _, a := range agents {
		r.agents[a.ID] = a
	}
	return r
}

func (r *fakeAgentRepo) Create(_ context.Context, agent *domain.Agent) error {
	r.agents[agent.ID] = *agent
	return nil
}

func (r *fakeAgentRepo) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	agent, ok := r.agents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &agent, nil
}

func (r *fakeAgentRepo) GetByEmail(_ context.Context, email string) (*domain.Agent, error) {
	for _, agent := range r.agents {
		if agent.Email == email {
			copied := agent
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAgentRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	agent, ok := r.agents[id]
	if !ok {
		return pgx.ErrNoRows
	}
	agent.PasswordHash = passwordHash
	r.agents[id] = agent
	return nil
}

func (r *fakeAgentRepo) List(_ context.Context, activeOnly bool) ([]domain.Agent, error) {
	var out []domain.Agent
	for _, agent := range r.agents {
		if activeOnly && !agent.Active {
			continue
		}
		out = append(out, agent)
	}
	return out, nil
}

type fakeAttachmentRepo struct {
	records    []domain.AttachmentReference
	seq        int
	failCreate error
}

func (r *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.AttachmentReference) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.seq++
	attachment.ID = fmt.Sprintf("att-%d", r.seq)
	r.records = append(r.records, *attachment)
	return nil
}

func (r *fakeAttachmentRepo) ListByComment(_ context.Context, commentID string) ([]domain.AttachmentReference, error) {
	var out []domain.AttachmentReference
	for _, a := range r.records {
		if a.CommentID == commentID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeBackend struct {
	stored      map[string][]byte
	deleted     []string
	seq         int
	validateErr map[string]error
	storeErr    error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{stored: make(map[string][]byte)}
}

func (b *fakeBackend) Store(_ context.Context, data []byte, meta storage.FileMetadata) (storage.Handle, error) {
	if b.storeErr != nil {
		return storage.Handle{}, b.storeErr
	}
	b.seq++
	key := fmt.Sprintf("blob-%d-%s", b.seq, meta.FileName)
	b.stored[key] = data
	return storage.Handle{Key: key, SizeBytes: int64(len(data))}, nil
}

func (b *fakeBackend) Validate(filename string, _ int64, _ string) error {
	if b.validateErr != nil {
		return b.validateErr[filename]
	}
	return nil
}

func (b *fakeBackend) Delete(_ context.Context, handle storage.Handle) bool {
	delete(b.stored, handle.Key)
	b.deleted = append(b.deleted, handle.Key)
	return true
}

func (b *fakeBackend) ResolveURL(handle storage.Handle) string {
	return "/files/" + handle.Key
}

// captureEmail records every sender invocation as "method" for assertions on
// which notification path fired.
type captureEmail struct {
	mu    sync.Mutex
	calls []string
}

func (s *captureEmail) record(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
	return nil
}

func (s *captureEmail) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *captureEmail) SendTicketCreated(context.Context, notify.Context) error {
	return s.record("SendTicketCreated")
}
func (s *captureEmail) SendTicketStatusChanged(context.Context, notify.Context) error {
	return s.record("SendTicketStatusChanged")
}
func (s *captureEmail) SendTicketComment(context.Context, notify.Context) error {
	return s.record("SendTicketComment")
}
func (s *captureEmail) SendTicketResponse(context.Context, notify.Context) error {
	return s.record("SendTicketResponse")
}
func (s *captureEmail) SendComplaintCreated(context.Context, notify.Context) error {
	return s.record("SendComplaintCreated")
}
func (s *captureEmail) SendComplaintStatusChanged(context.Context, notify.Context) error {
	return s.record("SendComplaintStatusChanged")
}
func (s *captureEmail) SendComplaintComment(context.Context, notify.Context) error {
	return s.record("SendComplaintComment")
}
func (s *captureEmail) SendComplaintResponse(context.Context, notify.Context) error {
	return s.record("SendComplaintResponse")
}
func (s *captureEmail) SendPurchaseRequestCreated(context.Context, notify.Context) error {
	return s.record("SendPurchaseRequestCreated")
}
func (s *captureEmail) SendPurchaseRequestStatusChanged(context.Context, notify.Context) error {
	return s.record("SendPurchaseRequestStatusChanged")
}
func (s *captureEmail) SendPurchaseRequestComment(context.Context, notify.Context) error {
	return s.record("SendPurchaseRequestComment")
}
func (s *captureEmail) SendPurchaseRequestResponse(context.Context, notify.Context) error {
	return s.record("SendPurchaseRequestResponse")
}

type fakeAllocator struct {
	seq int64
}

func (a *fakeAllocator) Next(_ context.Context, desc registry.Descriptor) (string, error) {
	a.seq++
	return fmt.Sprintf("%s-2026-%05d", desc.NumberPrefix, a.seq), nil
}

// env bundles one fully wired service stack over the fakes.
type env struct {
	requests    *fakeRequestRepo
	comments    *fakeCommentRepo
	history     *fakeHistoryRepo
	agents      *fakeAgentRepo
	attachments *fakeAttachmentRepo
	backend     *fakeBackend
	email       *captureEmail
	runtime     *config.Runtime
	router      *notify.Router

	lifecycle *LifecycleService
	response  *ResponseService
	request   *RequestService
}

func newEnv() *env {
	e := &env{
		requests:    newFakeRequestRepo(),
		comments:    &fakeCommentRepo{},
		history:     &fakeHistoryRepo{},
		agents:      newFakeAgentRepo(),
		attachments: &fakeAttachmentRepo{},
		backend:     newFakeBackend(),
		email:       &captureEmail{},
	}
	e.runtime = config.NewRuntime(config.Settings{
		Notifications: config.NotificationSettings{EmailEnabled: true},
		SLA: config.SLASettings{
			FirstResponseDays: map[domain.Kind]int{domain.KindTicket: 1, domain.KindComplaint: 2, domain.KindPurchaseRequest: 3},
			ResolutionDays:    map[domain.Kind]int{domain.KindTicket: 7, domain.KindComplaint: 15, domain.KindPurchaseRequest: 30},
		},
	})

	router, err := notify.NewRouter(e.email, nil, e.runtime, zap.NewNop())
	if err != nil {
		panic(err)
	}
	e.router = router

	audit := NewAuditTrail(e.history)
	e.lifecycle = NewLifecycleService(LifecycleDependencies{
		RequestRepo: e.requests,
		CommentRepo: e.comments,
		AgentRepo:   e.agents,
		Audit:       audit,
		Router:      router,
		Logger:      zap.NewNop(),
	})
	e.response = NewResponseService(ResponseDependencies{
		RequestRepo:    e.requests,
		CommentRepo:    e.comments,
		AttachmentRepo: e.attachments,
		Lifecycle:      e.lifecycle,
		Backend:        e.backend,
		Router:         router,
		Logger:         zap.NewNop(),
	})
	e.request = NewRequestService(RequestDependencies{
		RequestRepo:    e.requests,
		CommentRepo:    e.comments,
		AttachmentRepo: e.attachments,
		Audit:          audit,
		Numbers:        &fakeAllocator{},
		Runtime:        e.runtime,
		Router:         router,
	})
	return e
}

// seedTicket persists an open ticket and returns a working copy.
func (e *env) seedTicket(status domain.Status) *domain.Request {
	return e.seedTicketID("tk-1", status)
}

func (e *env) seedTicketID(id string, status domain.Status) *domain.Request {
	req := domain.Request{
		ID:          id,
		Kind:        domain.KindTicket,
		Number:      "TK-2026-" + id,
		Subject:     "No puedo acceder al sistema",
		Status:      status,
		Priority:    domain.PriorityMedia,
		RequesterID: "user-1",
		Channel:     domain.ChannelWeb,
	}
	e.requests.put(req)
	copied := req
	return &copied
}
