package transposition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS transpositions (
	digest TEXT PRIMARY KEY,
	depth  INTEGER NOT NULL DEFAULT 0,
	visits INTEGER NOT NULL DEFAULT 0,
	value  REAL    NOT NULL DEFAULT 0
);`

// SQLiteStore is a Store kept in a sqlite database file.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens (and creates, if needed) the database at path.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("empty transposition db path")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transposition db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA synchronous=NORMAL;", schema} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialise transposition db: %w", err)
		}
	}

	logger.Info("opened transposition store",
		zap.String("driver", "sqlite"),
		zap.String("path", path),
	)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, digest string) (Entry, bool, error) {
	e := Entry{Digest: digest}
	err := s.db.QueryRowContext(ctx,
		`SELECT depth, visits, value FROM transpositions WHERE digest = ?`, digest,
	).Scan(&e.Depth, &e.Visits, &e.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read transposition: %w", err)
	}
	return e, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transpositions (digest, depth, visits, value) VALUES (?, ?, ?, ?)
		ON CONFLICT (digest) DO UPDATE SET
			depth = excluded.depth,
			value = excluded.value
		WHERE excluded.depth >= transpositions.depth`,
		e.Digest, e.Depth, e.Visits, e.Value,
	)
	if err != nil {
		return fmt.Errorf("failed to store transposition: %w", err)
	}
	s.logger.Debug("stored transposition",
		zap.String("digest", e.Digest),
		zap.Int("depth", e.Depth),
	)
	return nil
}

func (s *SQLiteStore) Visit(ctx context.Context, digest string) (int, error) {
	var visits int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO transpositions (digest, visits) VALUES (?, 1)
		ON CONFLICT (digest) DO UPDATE SET visits = transpositions.visits + 1
		RETURNING visits`,
		digest,
	).Scan(&visits)
	if err != nil {
		return 0, fmt.Errorf("failed to record visit: %w", err)
	}
	return visits, nil
}

func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transpositions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transpositions: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
