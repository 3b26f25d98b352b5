package cache

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a durable VectorCache backed by a SQLite database. Vectors are
// stored as little-endian float64 blobs.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates a SQLite cache at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func NewSQLite(dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS vectors (
		key TEXT PRIMARY KEY,
		vector BLOB NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Get returns the cached vector for key.
func (s *SQLite) Get(key string) ([]float64, bool, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT vector FROM vectors WHERE key = ?`, key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return bytesToVector(blob), true, nil
}

// Put stores the vector for key, replacing any previous value.
func (s *SQLite) Put(key string, vector []float64) error {
	_, err := s.db.Exec(
		`INSERT INTO vectors (key, vector) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET vector = excluded.vector`,
		key, vectorToBytes(vector),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func vectorToBytes(v []float64) []byte {
	const size = 8
	out := make([]byte, len(v)*size)
	for i, f := range v {
		binary.LittleEndian.PutUint64(out[i*size:(i+1)*size], math.Float64bits(f))
	}
	return out
}

func bytesToVector(b []byte) []float64 {
	const size = 8
	out := make([]float64, len(b)/size)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*size : (i+1)*size]))
	}
	return out
}
