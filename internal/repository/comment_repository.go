package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/registry"
)

// CommentRepository manages request thread comments. Comments are immutable
// once created; there is no update or delete path.
type CommentRepository interface {
	Create(ctx context.Context, desc registry.Descriptor, comment *domain.Comment) error
	ListByRequest(ctx context.Context, desc registry.Descriptor, requestID string) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds the repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, desc registry.Descriptor, comment *domain.Comment) error {
	query := fmt.Sprintf(`
        INSERT INTO %s (%s, author_id, visibility, body)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`, desc.CommentsTable, desc.ForeignKey)
	return r.pool.QueryRow(ctx, query,
		comment.RequestID,
		comment.AuthorID,
		comment.Visibility,
		comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByRequest(ctx context.Context, desc registry.Descriptor, requestID string) ([]domain.Comment, error) {
	query := fmt.Sprintf(`
        SELECT id, %s, author_id, visibility, body, created_at
        FROM %s WHERE %s=$1 ORDER BY created_at ASC`, desc.ForeignKey, desc.CommentsTable, desc.ForeignKey)
	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.RequestID,
			&comment.AuthorID,
			&comment.Visibility,
			&comment.Body,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
