package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/registry"
)

// HistoryRepository stores append-only audit entries. Entries are listed
// most recent first and are never updated or deleted.
type HistoryRepository interface {
	Create(ctx context.Context, desc registry.Descriptor, entry *domain.HistoryEntry) error
	ListByRequest(ctx context.Context, desc registry.Descriptor, requestID string, limit, offset int) ([]domain.HistoryEntry, error)
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository builds the repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Create(ctx context.Context, desc registry.Descriptor, entry *domain.HistoryEntry) error {
	query := fmt.Sprintf(`
        INSERT INTO %s (%s, actor_id, field_name, old_value, new_value, description)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`, desc.HistoryTable, desc.ForeignKey)
	return r.pool.QueryRow(ctx, query,
		entry.RequestID,
		entry.ActorID,
		entry.FieldName,
		entry.OldValue,
		entry.NewValue,
		entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *historyRepository) ListByRequest(ctx context.Context, desc registry.Descriptor, requestID string, limit, offset int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`
        SELECT id, %s, actor_id, field_name, old_value, new_value, description, created_at
        FROM %s WHERE %s=$1 ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		desc.ForeignKey, desc.HistoryTable, desc.ForeignKey, limit, offset)
	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.ActorID,
			&entry.FieldName,
			&entry.OldValue,
			&entry.NewValue,
			&entry.Description,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
