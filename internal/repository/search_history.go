package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindcove/mindex/internal/domain"
	"github.com/mindcove/mindex/internal/pagination"
)

// SearchHistoryRepository stores per-user search history for analytics and
// the adoption feedback loop.
type SearchHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewSearchHistoryRepository(pool *pgxpool.Pool) *SearchHistoryRepository {
	return &SearchHistoryRepository{pool: pool}
}

func (r *SearchHistoryRepository) CreateSearchHistory(ctx context.Context, entry domain.SearchHistory) error {
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO search_histories (id, user_id, query, role, results_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id,
		entry.UserID,
		entry.Query,
		nullableString(string(entry.Role)),
		entry.ResultsCount,
		createdAt,
	)
	return err
}

// UpdateAdoptionStatus records feedback on a prior search. The user id guards
// against updating someone else's record.
func (r *SearchHistoryRepository) UpdateAdoptionStatus(ctx context.Context, userID, historyID string, status domain.AdoptionStatus) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE search_histories SET adoption_status = $1
		 WHERE id = $2 AND user_id = $3`,
		string(status), historyID, userID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSearchHistoryNotFound
	}
	return nil
}

// ListByUser returns the user's history newest first, cursor-paginated.
func (r *SearchHistoryRepository) ListByUser(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) ([]*domain.SearchHistory, string, bool, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT id, user_id, query, role, results_count, adoption_status, created_at
			 FROM search_histories
			 WHERE user_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			userID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id, user_id, query, role, results_count, adoption_status, created_at
			 FROM search_histories
			 WHERE user_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			userID, limit+1,
		)
	}
	if err != nil {
		return nil, "", false, err
	}
	defer rows.Close()

	var items []*domain.SearchHistory
	for rows.Next() {
		var h domain.SearchHistory
		var role, adoption *string
		if err := rows.Scan(&h.ID, &h.UserID, &h.Query, &role, &h.ResultsCount, &adoption, &h.CreatedAt); err != nil {
			return nil, "", false, err
		}
		if role != nil {
			h.Role = domain.Role(*role)
		}
		if adoption != nil {
			h.AdoptionStatus = domain.AdoptionStatus(*adoption)
		}
		items = append(items, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, "", false, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return items, nextCursor, hasMore, nil
}
