// Package sqlite provides a SQLite-backed phrase store. Vectors are
// stored as little-endian float32 blobs alongside the phrase text, so
// index rebuilds never need to re-embed.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mindset-labs/phrasematch/types"
)

// Backend implements types.StoreBackend on a SQLite database.
type Backend struct {
	db *sql.DB
}

// New opens the phrase database at path, creating the schema if
// needed.
func New(path string) (*Backend, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening phrase database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS phrases (
			key TEXT NOT NULL,
			id TEXT NOT NULL,
			text TEXT NOT NULL,
			vector BLOB NOT NULL,
			PRIMARY KEY (key, id)
		);
		CREATE INDEX IF NOT EXISTS idx_phrases_text ON phrases(text);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating phrases table: %w", err)
	}

	return &Backend{db: db}, nil
}

// Append inserts variations under key inside one transaction, skipping
// IDs already present.
func (b *Backend) Append(ctx context.Context, key string, vars []types.Variation) ([]types.Variation, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning append: %w", err)
	}
	defer tx.Rollback()

	var added []types.Variation
	for _, v := range vars {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO phrases (key, id, text, vector) VALUES (?, ?, ?, ?)`,
			key, v.ID, v.Text, encodeVector(v.Vector),
		)
		if err != nil {
			return nil, fmt.Errorf("inserting phrase %q: %w", v.Text, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added = append(added, v)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing append: %w", err)
	}
	return added, nil
}

// Variations returns the stored variations for key in insertion order.
func (b *Backend) Variations(ctx context.Context, key string) ([]types.Variation, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, text, vector FROM phrases WHERE key = ? ORDER BY rowid`, key)
	if err != nil {
		return nil, fmt.Errorf("querying variations: %w", err)
	}
	defer rows.Close()

	var vars []types.Variation
	for rows.Next() {
		var v types.Variation
		var blob []byte
		if err := rows.Scan(&v.ID, &v.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning variation: %w", err)
		}
		v.Vector = decodeVector(blob)
		vars = append(vars, v)
	}
	return vars, rows.Err()
}

// Keys returns all canonical intent keys, sorted.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT DISTINCT key FROM phrases ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("querying keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// KeysForText returns the keys under which the exact text is
// registered, sorted.
func (b *Backend) KeysForText(ctx context.Context, text string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT DISTINCT key FROM phrases WHERE text = ? ORDER BY key`, text)
	if err != nil {
		return nil, fmt.Errorf("querying keys for text: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// ForEach streams every stored variation in key order.
func (b *Backend) ForEach(ctx context.Context, fn func(key string, v types.Variation) error) error {
	rows, err := b.db.QueryContext(ctx,
		`SELECT key, id, text, vector FROM phrases ORDER BY key, rowid`)
	if err != nil {
		return fmt.Errorf("querying phrases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var v types.Variation
		var blob []byte
		if err := rows.Scan(&key, &v.ID, &v.Text, &blob); err != nil {
			return fmt.Errorf("scanning phrase: %w", err)
		}
		v.Vector = decodeVector(blob)
		if err := fn(key, v); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Len returns the total number of stored variations.
func (b *Backend) Len(ctx context.Context) (int, error) {
	var n int
	if err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM phrases`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting phrases: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (b *Backend) Close() error {
	return b.db.Close()
}

// encodeVector packs a vector as little-endian float32 bytes.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks little-endian float32 bytes.
func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
