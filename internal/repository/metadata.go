package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindcove/mindex/internal/domain"
)

// MetadataRepository batch-loads document and datasource records referenced
// by search matches. Lookups return only the rows that exist; missing ids are
// simply absent from the result.
type MetadataRepository struct {
	pool *pgxpool.Pool
}

func NewMetadataRepository(pool *pgxpool.Pool) *MetadataRepository {
	return &MetadataRepository{pool: pool}
}

func (r *MetadataRepository) FindDocuments(ctx context.Context, ids []string) ([]*domain.DocumentSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, external_id, author, synced_at
		 FROM documents WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.DocumentSnapshot
	for rows.Next() {
		var d domain.DocumentSnapshot
		var externalID, author *string
		var syncedAt *time.Time
		if err := rows.Scan(&d.ID, &d.Title, &externalID, &author, &syncedAt); err != nil {
			return nil, err
		}
		if externalID != nil {
			d.ExternalID = *externalID
		}
		if author != nil {
			d.Author = *author
		}
		d.SyncedAt = syncedAt
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

func (r *MetadataRepository) FindDataSources(ctx context.Context, ids []string) ([]*domain.DataSourceSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, type, config
		 FROM datasources WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*domain.DataSourceSnapshot
	for rows.Next() {
		var ds domain.DataSourceSnapshot
		var configJSON []byte
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.Type, &configJSON); err != nil {
			return nil, err
		}
		if len(configJSON) > 0 {
			if err := json.Unmarshal(configJSON, &ds.Config); err != nil {
				ds.Config = nil
			}
		}
		sources = append(sources, &ds)
	}
	return sources, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
