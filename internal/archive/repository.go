package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/optionscout/optionscout/internal/contracts"
)

// ErrNotFound reports that no archived digest matched the query.
var ErrNotFound = errors.New("digest not found")

// Digest is one archived screening result. The ranked contracts are stored
// as jsonb so the archive never needs a schema migration when the engine
// grows a component.
type Digest struct {
	ID           uuid.UUID                  `json:"id"`
	Underlying   string                     `json:"underlying"`
	Side         string                     `json:"side"`
	Profile      string                     `json:"profile"`
	RawCount     int                        `json:"raw_count"`
	TopContracts []contracts.ScoredContract `json:"top_contracts"`
	Digest       string                     `json:"digest"`
	Insight      string                     `json:"insight,omitempty"`
	CreatedAt    time.Time                  `json:"created_at"`
}

// Repository persists screening digests. It is the only component touching
// the scout.digests table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a digest repository over the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the archive schema and table if they do not exist.
// Called once at startup; safe to call repeatedly.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE SCHEMA IF NOT EXISTS scout;

		CREATE TABLE IF NOT EXISTS scout.digests (
			id            uuid PRIMARY KEY,
			underlying    text NOT NULL,
			side          text NOT NULL,
			profile       text NOT NULL,
			raw_count     integer NOT NULL,
			top_contracts jsonb NOT NULL,
			digest        text NOT NULL,
			insight       text NOT NULL DEFAULT '',
			created_at    timestamptz NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_digests_underlying_created
			ON scout.digests (underlying, created_at DESC);
	`

	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("archive: ensure schema: %w", err)
	}
	return nil
}

// SaveDigest archives one screening result and returns the stored record.
func (r *Repository) SaveDigest(ctx context.Context, underlying, side, profile string, rawCount int, result *contracts.RankedResult, insight string) (*Digest, error) {
	topJSON, err := json.Marshal(result.Contracts)
	if err != nil {
		return nil, fmt.Errorf("archive: marshal contracts: %w", err)
	}

	d := &Digest{
		ID:           uuid.New(),
		Underlying:   underlying,
		Side:         side,
		Profile:      profile,
		RawCount:     rawCount,
		TopContracts: result.Contracts,
		Digest:       result.Digest,
		Insight:      insight,
	}

	const query = `
		INSERT INTO scout.digests
			(id, underlying, side, profile, raw_count, top_contracts, digest, insight)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err = r.pool.QueryRow(ctx, query,
		d.ID, d.Underlying, d.Side, d.Profile, d.RawCount, topJSON, d.Digest, d.Insight,
	).Scan(&d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("archive: insert digest: %w", err)
	}

	return d, nil
}

// RecentDigests returns the latest digests for an underlying, newest first.
func (r *Repository) RecentDigests(ctx context.Context, underlying string, limit int) ([]Digest, error) {
	if limit <= 0 {
		limit = 10
	}

	const query = `
		SELECT id, underlying, side, profile, raw_count, top_contracts, digest, insight, created_at
		FROM scout.digests
		WHERE underlying = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, underlying, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: query recent digests: %w", err)
	}
	defer rows.Close()

	var out []Digest
	for rows.Next() {
		d, err := scanDigest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: iterate digests: %w", err)
	}

	return out, nil
}

// LatestDigest returns the most recent digest for an underlying.
func (r *Repository) LatestDigest(ctx context.Context, underlying string) (*Digest, error) {
	const query = `
		SELECT id, underlying, side, profile, raw_count, top_contracts, digest, insight, created_at
		FROM scout.digests
		WHERE underlying = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	row := r.pool.QueryRow(ctx, query, underlying)
	d, err := scanDigest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return d, nil
}

// PruneOlderThan deletes digests past the retention window and reports how
// many were removed.
func (r *Repository) PruneOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM scout.digests WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("archive: prune digests: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanDigest(row pgx.Row) (*Digest, error) {
	var d Digest
	var topJSON []byte

	err := row.Scan(&d.ID, &d.Underlying, &d.Side, &d.Profile, &d.RawCount,
		&topJSON, &d.Digest, &d.Insight, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("archive: scan digest: %w", err)
	}

	if err := json.Unmarshal(topJSON, &d.TopContracts); err != nil {
		return nil, fmt.Errorf("archive: unmarshal contracts: %w", err)
	}

	return &d, nil
}
