package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB holds a single-connection writer and a small reader pool over one
// database file. All writes go through Writer.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// Connection limits per pool.
const (
	maxWriterConns = 1
	maxReaderConns = 4
)

// NewDB opens the database at dbPath in WAL mode with a busy timeout and
// synchronous NORMAL.
func NewDB(ctx context.Context, dbPath string) (*DB, error) {
	dsn := "file:" + dbPath + "?_pragma=journal_mode(WAL)&" + commonPragmas
	return openPools(ctx, dsn, dbPath)
}

// commonPragmas apply to every connection, file-backed or in-memory.
const commonPragmas = "_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

func openPools(ctx context.Context, dsn, path string) (*DB, error) {
	writer, err := openPool(ctx, dsn, maxWriterConns)
	if err != nil {
		return nil, fmt.Errorf("writer: %w", err)
	}

	reader, err := openPool(ctx, dsn, maxReaderConns)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("reader: %w", err)
	}

	return &DB{Writer: writer, Reader: reader, path: path}, nil
}

func openPool(ctx context.Context, dsn string, maxConns int) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	pool.SetMaxOpenConns(maxConns)

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Path returns the file the database was opened from.
func (db *DB) Path() string {
	return db.path
}

// Close closes the reader pool and then the writer.
func (db *DB) Close() error {
	readerErr := db.Reader.Close()
	writerErr := db.Writer.Close()
	if readerErr != nil {
		return fmt.Errorf("close reader: %w", readerErr)
	}
	if writerErr != nil {
		return fmt.Errorf("close writer: %w", writerErr)
	}
	return nil
}

// storedTimeLayout is fixed-width so stored timestamps sort lexically.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

// parseTime also accepts rows written by hand with SQLite's datetime().
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("stored time %q is not RFC 3339 or SQL datetime", s)
}
