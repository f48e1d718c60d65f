package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/mindcove/mindex/internal/domain"
)

// VectorIndexRepository serves nearest-neighbor queries over document chunk
// embeddings stored in pgvector.
type VectorIndexRepository struct {
	pool *pgxpool.Pool
}

func NewVectorIndexRepository(pool *pgxpool.Pool) *VectorIndexRepository {
	return &VectorIndexRepository{pool: pool}
}

// Search returns the topK chunks closest to the embedding, ordered by
// ascending cosine distance. filterExpr is the engine-built conjunctive
// expression over datasource_id / content_type set membership; values inside
// it are quoted by the engine, never caller-supplied verbatim.
func (r *VectorIndexRepository) Search(ctx context.Context, embedding []float32, topK int, filterExpr string) ([]*domain.RawMatch, error) {
	query := `SELECT id, document_id, datasource_id, chunk_index, content, content_type, metadata,
		 embedding <=> $1 AS distance
	 FROM document_chunks
	 WHERE embedding IS NOT NULL`
	if filterExpr != "" {
		query += " AND (" + filterExpr + ")"
	}
	query += `
	 ORDER BY distance ASC
	 LIMIT $2`

	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("vector search query failed: %w", err)
	}
	defer rows.Close()

	var matches []*domain.RawMatch
	for rows.Next() {
		var m domain.RawMatch
		var metadataJSON []byte
		if err := rows.Scan(&m.ID, &m.DocumentID, &m.DatasourceID, &m.ChunkIndex, &m.Content, &m.ContentType, &metadataJSON, &m.Distance); err != nil {
			return nil, err
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &m.Metadata); err != nil {
				m.Metadata = nil
			}
		}
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}
