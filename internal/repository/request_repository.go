package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/registry"
)

// RequestFilter captures listing parameters.
type RequestFilter struct {
	RequesterID *string
	AssigneeID  *string
	Statuses    []domain.Status
	Priorities  []domain.Priority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// RequestRepository persists requests of any kind. The descriptor supplies
// the target table; all three kinds share identical column shapes.
type RequestRepository interface {
	Create(ctx context.Context, desc registry.Descriptor, req *domain.Request) error
	Update(ctx context.Context, desc registry.Descriptor, req *domain.Request) error
	GetByID(ctx context.Context, desc registry.Descriptor, id string) (*domain.Request, error)
	GetByNumber(ctx context.Context, desc registry.Descriptor, number string) (*domain.Request, error)
	ListWithFilter(ctx context.Context, desc registry.Descriptor, filter RequestFilter) ([]domain.Request, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates the repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

const requestColumns = `id, number, subject, description, status, priority, sub_kind,
       requester_user_id, assignee_agent_id, channel,
       created_at, updated_at, first_response_at, resolved_at, closed_at,
       first_response_due, resolution_due`

func (r *requestRepository) Create(ctx context.Context, desc registry.Descriptor, req *domain.Request) error {
	query := fmt.Sprintf(`
        INSERT INTO %s (number, subject, description, status, priority, sub_kind,
                        requester_user_id, assignee_agent_id, channel,
                        first_response_due, resolution_due)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`, desc.Table)
	return r.pool.QueryRow(ctx, query,
		req.Number,
		req.Subject,
		req.Description,
		req.Status,
		req.Priority,
		req.SubKind,
		req.RequesterID,
		req.AssigneeID,
		req.Channel,
		req.FirstResponseDue,
		req.ResolutionDue,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *requestRepository) Update(ctx context.Context, desc registry.Descriptor, req *domain.Request) error {
	query := fmt.Sprintf(`
        UPDATE %s SET subject=$1, description=$2, status=$3, priority=$4, sub_kind=$5,
            assignee_agent_id=$6, first_response_at=$7, resolved_at=$8, closed_at=$9,
            updated_at=NOW()
        WHERE id=$10`, desc.Table)
	cmd, err := r.pool.Exec(ctx, query,
		req.Subject,
		req.Description,
		req.Status,
		req.Priority,
		req.SubKind,
		req.AssigneeID,
		req.FirstResponseAt,
		req.ResolvedAt,
		req.ClosedAt,
		req.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, desc registry.Descriptor, id string) (*domain.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id=$1`, requestColumns, desc.Table)
	return r.fetchSingle(ctx, desc, query, id)
}

func (r *requestRepository) GetByNumber(ctx context.Context, desc registry.Descriptor, number string) (*domain.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s=$1`, requestColumns, desc.Table, desc.NumberField)
	return r.fetchSingle(ctx, desc, query, number)
}

func (r *requestRepository) fetchSingle(ctx context.Context, desc registry.Descriptor, query string, arg any) (*domain.Request, error) {
	var req domain.Request
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&req.ID,
		&req.Number,
		&req.Subject,
		&req.Description,
		&req.Status,
		&req.Priority,
		&req.SubKind,
		&req.RequesterID,
		&req.AssigneeID,
		&req.Channel,
		&req.CreatedAt,
		&req.UpdatedAt,
		&req.FirstResponseAt,
		&req.ResolvedAt,
		&req.ClosedAt,
		&req.FirstResponseDue,
		&req.ResolutionDue,
	); err != nil {
		return nil, err
	}
	req.Kind = desc.Kind
	return &req, nil
}

func (r *requestRepository) ListWithFilter(ctx context.Context, desc registry.Descriptor, filter RequestFilter) ([]domain.Request, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_user_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_agent_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(subject) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		requestColumns, desc.Table, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Request
	for rows.Next() {
		var req domain.Request
		if err := rows.Scan(
			&req.ID,
			&req.Number,
			&req.Subject,
			&req.Description,
			&req.Status,
			&req.Priority,
			&req.SubKind,
			&req.RequesterID,
			&req.AssigneeID,
			&req.Channel,
			&req.CreatedAt,
			&req.UpdatedAt,
			&req.FirstResponseAt,
			&req.ResolvedAt,
			&req.ClosedAt,
			&req.FirstResponseDue,
			&req.ResolutionDue,
		); err != nil {
			return nil, err
		}
		req.Kind = desc.Kind
		result = append(result, req)
	}
	return result, rows.Err()
}
