package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ohmanagement/sitebot"
)

// Compile-time interface verification.
var _ sitebot.IndexStore = (*IndexStore)(nil)

// IndexStore implements sitebot.IndexStore using SQLite.
type IndexStore struct {
	db *DB
}

// NewIndexStore creates a new IndexStore.
func NewIndexStore(db *DB) *IndexStore {
	return &IndexStore{db: db}
}

// ReplaceIndex deletes every stored chunk and inserts chunks in one
// transaction.
func (s *IndexStore) ReplaceIndex(ctx context.Context, chunks []*sitebot.Chunk) error {
	for _, c := range chunks {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return sitebot.Errorf(sitebot.EUNAVAILABLE, "begin transaction: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, position, title, url, excerpt, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, i, c.Title, c.URL, c.Excerpt, c.Content,
			encodeEmbedding(c.Embedding), c.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return sitebot.Errorf(sitebot.ECONFLICT, "insert chunk %s: %v", c.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO index_meta (key, value) VALUES ('written_at', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("update index metadata: %w", err)
	}

	return tx.Commit()
}

// LoadIndex returns the stored chunks in write order.
// Returns ENOTFOUND if no index has been written.
func (s *IndexStore) LoadIndex(ctx context.Context) ([]*sitebot.Chunk, error) {
	var writtenAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(value), '') FROM index_meta WHERE key = 'written_at'`).Scan(&writtenAt)
	if err != nil {
		return nil, err
	}
	if writtenAt == "" {
		return nil, sitebot.Errorf(sitebot.ENOTFOUND, "index not found")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, url, excerpt, content, embedding, created_at
		FROM chunks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chunks := []*sitebot.Chunk{}
	for rows.Next() {
		var (
			c         sitebot.Chunk
			blob      []byte
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.URL, &c.Excerpt, &c.Content, &blob, &createdAt); err != nil {
			return nil, err
		}
		if c.Embedding, err = decodeEmbedding(blob); err != nil {
			return nil, sitebot.Errorf(sitebot.EPARSE, "chunk %s: %v", c.ID, err)
		}
		if c.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, sitebot.Errorf(sitebot.EPARSE, "chunk %s: %v", c.ID, err)
		}
		chunks = append(chunks, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return chunks, nil
}
