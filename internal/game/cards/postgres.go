package cards

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const importBatchSize = 1000

const createCardsTable = `
CREATE TABLE IF NOT EXISTS sabber_cards (
	card_id    TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	card_type  TEXT NOT NULL,
	cost       INTEGER NOT NULL,
	attack     INTEGER NOT NULL DEFAULT 0,
	health     INTEGER NOT NULL DEFAULT 0,
	durability INTEGER NOT NULL DEFAULT 0,
	text       TEXT NOT NULL DEFAULT '',
	tags       JSONB NOT NULL DEFAULT '{}'::jsonb
)`

const upsertCard = `
INSERT INTO sabber_cards (card_id, name, card_type, cost, attack, health, durability, text, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (card_id) DO UPDATE SET
	name = EXCLUDED.name,
	card_type = EXCLUDED.card_type,
	cost = EXCLUDED.cost,
	attack = EXCLUDED.attack,
	health = EXCLUDED.health,
	durability = EXCLUDED.durability,
	text = EXCLUDED.text,
	tags = EXCLUDED.tags`

// PostgresStore keeps card definitions in PostgreSQL.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// OpenPostgres connects to the database and verifies the connection.
func OpenPostgres(ctx context.Context, url string, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Migrate creates the card table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createCardsTable); err != nil {
		return fmt.Errorf("failed to create card table: %w", err)
	}
	return nil
}

// Import upserts cards in batches, one transaction per batch.
func (s *PostgresStore) Import(ctx context.Context, list []*Card) (int, error) {
	imported := 0
	for i := 0; i < len(list); i += importBatchSize {
		end := i + importBatchSize
		if end > len(list) {
			end = len(list)
		}
		batch := list[i:end]

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return imported, fmt.Errorf("failed to begin transaction: %w", err)
		}

		for _, c := range batch {
			def := c.Definition()
			tags, err := json.Marshal(def.Tags)
			if err != nil {
				_ = tx.Rollback(ctx)
				return imported, fmt.Errorf("failed to encode tags of %s: %w", c.ID, err)
			}
			if def.Tags == nil {
				tags = []byte("{}")
			}
			if _, err := tx.Exec(ctx, upsertCard,
				def.ID, def.Name, def.Type, def.Cost,
				def.Attack, def.Health, def.Durability, def.Text, tags,
			); err != nil {
				_ = tx.Rollback(ctx)
				return imported, fmt.Errorf("failed to insert card %s: %w", c.ID, err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			_ = tx.Rollback(ctx)
			return imported, fmt.Errorf("failed to commit batch: %w", err)
		}
		imported += len(batch)

		if s.logger != nil {
			s.logger.Debug("imported card batch",
				zap.Int("imported", imported),
				zap.Int("total", len(list)),
			)
		}
	}
	return imported, nil
}

// Load reads every stored card into a memory repository.
func (s *PostgresStore) Load(ctx context.Context) (*MemoryRepository, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT card_id, name, card_type, cost, attack, health, durability, text, tags
		FROM sabber_cards ORDER BY card_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var list []*Card
	for rows.Next() {
		var (
			def  Definition
			tags []byte
		)
		if err := rows.Scan(&def.ID, &def.Name, &def.Type, &def.Cost,
			&def.Attack, &def.Health, &def.Durability, &def.Text, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &def.Tags); err != nil {
				return nil, fmt.Errorf("failed to decode tags of %s: %w", def.ID, err)
			}
		}
		c, err := New(def)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return NewMemoryRepository(list...), nil
}
