package history

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

const connectTimeout = 10 * time.Second

// PostgresStore keeps history in a scan_history table
type PostgresStore struct {
	pool *pgxpool.Pool
	max  int
}

// NewPostgresStore connects to dsn, applies the embedded migrations and returns a store
// keeping at most maxRecords records
func NewPostgresStore(ctx context.Context, dsn string, maxRecords int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}

	log.Info().Msg("history database connected")

	return &PostgresStore{pool: pool, max: maxRecords}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close() //nolint:errcheck // closing the wrapper does not close the pool

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrate, err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrate, err)
	}

	return nil
}

// Close releases the connection pool
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// Save upserts rec and prunes the oldest rows beyond the configured maximum
func (p *PostgresStore) Save(ctx context.Context, rec Record) error {
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		return ErrMissingID
	}

	var result []byte
	if len(rec.Result) > 0 {
		result = rec.Result
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO scan_history (id, final_risk, verdict, confidence_level, threat_category, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			final_risk = EXCLUDED.final_risk,
			verdict = EXCLUDED.verdict,
			confidence_level = EXCLUDED.confidence_level,
			threat_category = EXCLUDED.threat_category,
			result = EXCLUDED.result,
			created_at = EXCLUDED.created_at
	`, rec.ID, rec.FinalRisk, rec.Verdict, rec.ConfidenceLevel, rec.ThreatCategory, result, rec.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("save history record: %w", err)
	}

	if _, err := p.pool.Exec(ctx, `
		DELETE FROM scan_history WHERE id IN (
			SELECT id FROM scan_history ORDER BY created_at DESC OFFSET $1
		)
	`, p.max); err != nil {
		log.Warn().Err(err).Msg("failed to prune history")
	}

	return nil
}

const selectColumns = `SELECT id, final_risk, verdict, confidence_level, threat_category, result, created_at FROM scan_history`

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec    Record
		result []byte
	)

	if err := row.Scan(&rec.ID, &rec.FinalRisk, &rec.Verdict, &rec.ConfidenceLevel, &rec.ThreatCategory, &result, &rec.Timestamp); err != nil {
		return Record{}, err
	}

	rec.Result = result

	return rec, nil
}

// Get returns the record stored under id
func (p *PostgresStore) Get(ctx context.Context, id string) (Record, error) {
	rec, err := scanRecord(p.pool.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}

	if err != nil {
		return Record{}, fmt.Errorf("get history record: %w", err)
	}

	return rec, nil
}

// List returns every record, newest first
func (p *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := p.pool.Query(ctx, selectColumns+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		return scanRecord(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	if records == nil {
		records = []Record{}
	}

	return records, nil
}

// Delete removes the record stored under id
func (p *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM scan_history WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete history record: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// Clear removes every record
func (p *PostgresStore) Clear(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM scan_history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	return nil
}
