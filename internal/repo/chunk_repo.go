package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/talentvec/talentvec/internal/model"
	"github.com/talentvec/talentvec/internal/pkg/dbutil"
	appErr "github.com/talentvec/talentvec/internal/pkg/errors"
)

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// FindSimilarQuery is a similarity lookup pushed down to the store so the
// ANN index does the ranking, not a client-side post-filter.
type FindSimilarQuery struct {
	Vector        []float32
	OwnerID       string            // empty = no owner scope
	SectionType   model.SectionType // empty = all sections
	Limit         int
	MinSimilarity float64
}

const chunkColumns = `id, owner_id, document_id, extraction_id, seq_index, section_type, title, content, embedding_model, metadata, ctime`

// InsertBatch writes all chunks of one source in a single transaction;
// a partial batch is never observable.
func (r *ChunkRepo) InsertBatch(ctx context.Context, chunks []*model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO resume_chunks
			(id, owner_id, document_id, extraction_id, seq_index, section_type, title, content, embedding, embedding_model, metadata, ctime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		meta, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("encode chunk metadata: %w", err)
		}
		var embedding interface{}
		var embeddingModel interface{}
		if chunk.Embedding != nil {
			embedding = pgvector.NewVector(chunk.Embedding)
			embeddingModel = chunk.EmbeddingModel
		}
		if _, err := stmt.ExecContext(ctx,
			chunk.ID,
			chunk.OwnerID,
			nullable(chunk.DocumentID),
			nullable(chunk.ExtractionID),
			chunk.SeqIndex,
			chunk.SectionType,
			chunk.Title,
			chunk.Content,
			embedding,
			embeddingModel,
			meta,
			chunk.Ctime,
		); err != nil {
			if dbutil.IsConflict(err) {
				return fmt.Errorf("chunk id already exists: %w", appErr.ErrConflict)
			}
			return err
		}
	}
	return tx.Commit()
}

func (r *ChunkRepo) DeleteByExtraction(ctx context.Context, ownerID, extractionID string) (int64, error) {
	const query = `DELETE FROM resume_chunks WHERE owner_id = $1 AND extraction_id = $2`
	res, err := r.db.ExecContext(ctx, query, ownerID, extractionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ChunkRepo) DeleteByDocument(ctx context.Context, ownerID, documentID string) (int64, error) {
	const query = `DELETE FROM resume_chunks WHERE owner_id = $1 AND document_id = $2`
	res, err := r.db.ExecContext(ctx, query, ownerID, documentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ChunkRepo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM resume_chunks WHERE owner_id = $1`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// FindSimilar ranks chunks by cosine similarity (1 - cosine distance) to
// q.Vector. Chunks without a vector never match. Ties keep the index's
// natural order; no secondary sort key is applied.
func (r *ChunkRepo) FindSimilar(ctx context.Context, q FindSimilarQuery) ([]model.ChunkMatch, error) {
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}
	vec := pgvector.NewVector(q.Vector)
	args := []interface{}{vec}
	var conds []string
	conds = append(conds, "embedding IS NOT NULL")
	if q.OwnerID != "" {
		args = append(args, q.OwnerID)
		conds = append(conds, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if q.SectionType != "" {
		args = append(args, q.SectionType)
		conds = append(conds, fmt.Sprintf("section_type = $%d", len(args)))
	}
	args = append(args, q.MinSimilarity)
	conds = append(conds, fmt.Sprintf("1 - (embedding <=> $1) >= $%d", len(args)))
	args = append(args, q.Limit)

	query := fmt.Sprintf(`
		SELECT %s, 1 - (embedding <=> $1) AS similarity
		FROM resume_chunks
		WHERE %s
		ORDER BY embedding <=> $1
		LIMIT $%d
	`, chunkColumns, strings.Join(conds, " AND "), len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []model.ChunkMatch
	for rows.Next() {
		var m model.ChunkMatch
		if err := scanChunk(rows, &m.Chunk, &m.Similarity); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ListBySource returns the chunks of one source in sequence order,
// including vector-less ones.
func (r *ChunkRepo) ListBySource(ctx context.Context, ownerID, documentID, extractionID string) ([]model.Chunk, error) {
	where := map[string]interface{}{
		"owner_id": ownerID,
		"_orderby": "seq_index asc",
	}
	if documentID != "" {
		where["document_id"] = documentID
	}
	if extractionID != "" {
		where["extraction_id"] = extractionID
	}
	query, args, err := builder.BuildSelect("resume_chunks", where, strings.Split(chunkColumns, ", "))
	if err != nil {
		return nil, err
	}
	query, args = dbutil.Finalize(query, args)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []model.Chunk
	for rows.Next() {
		var chunk model.Chunk
		if err := scanChunk(rows, &chunk, nil); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// ListStale finds chunks whose vector is missing or was produced by a
// different model than the active one. Used by the re-embed sweep.
func (r *ChunkRepo) ListStale(ctx context.Context, modelName string, limit int) ([]model.Chunk, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM resume_chunks
		WHERE embedding IS NULL OR embedding_model IS DISTINCT FROM $1
		ORDER BY ctime ASC
		LIMIT $2
	`, chunkColumns)
	rows, err := r.db.QueryContext(ctx, query, modelName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []model.Chunk
	for rows.Next() {
		var chunk model.Chunk
		if err := scanChunk(rows, &chunk, nil); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (r *ChunkRepo) UpdateEmbedding(ctx context.Context, id string, vec []float32, modelName string) error {
	const query = `UPDATE resume_chunks SET embedding = $1, embedding_model = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, pgvector.NewVector(vec), modelName, id)
	return err
}

func scanChunk(rows *sql.Rows, chunk *model.Chunk, similarity *float64) error {
	var documentID, extractionID, embeddingModel sql.NullString
	var meta []byte
	dest := []interface{}{
		&chunk.ID,
		&chunk.OwnerID,
		&documentID,
		&extractionID,
		&chunk.SeqIndex,
		&chunk.SectionType,
		&chunk.Title,
		&chunk.Content,
		&embeddingModel,
		&meta,
		&chunk.Ctime,
	}
	if similarity != nil {
		dest = append(dest, similarity)
	}
	if err := rows.Scan(dest...); err != nil {
		return err
	}
	chunk.DocumentID = documentID.String
	chunk.ExtractionID = extractionID.String
	chunk.EmbeddingModel = embeddingModel.String
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &chunk.Metadata); err != nil {
			return fmt.Errorf("decode chunk metadata: %w", err)
		}
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
