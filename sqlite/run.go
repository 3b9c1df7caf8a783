package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/clinscrape/clinscrape"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ clinscrape.RunService = (*RunService)(nil)

// RunService implements clinscrape.RunService using SQLite.
// Products are stored as JSON documents per run; the treatment nesting makes
// a relational layout more trouble than the query patterns justify.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun stores a run together with its extracted products in one
// transaction.
func (s *RunService) CreateRun(ctx context.Context, run *clinscrape.Run, products []*clinscrape.Product) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Products = len(products)
	run.Treatments = 0
	for _, p := range products {
		run.Treatments += len(p.Treatments)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, target_key, site_name, provider, model, products, treatments, pages, failed, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.TargetKey, run.SiteName, run.Provider, run.Model,
		run.Products, run.Treatments, run.Pages, run.Failed,
		run.StartedAt.Format(time.RFC3339), run.Duration.Milliseconds())
	if err != nil {
		return err
	}

	for i, p := range products {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to encode product %q: %w", p.Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (id, run_id, position, data)
			VALUES (?, ?, ?, ?)
		`, uuid.New().String(), run.ID, i, string(data))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindRuns retrieves runs matching the filter, most recent first.
func (s *RunService) FindRuns(ctx context.Context, filter clinscrape.RunFilter) ([]*clinscrape.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT id, target_key, site_name, provider, model, products, treatments, pages, failed, started_at, duration_ms
		FROM runs WHERE 1=1
	`)

	if filter.TargetKey != nil {
		query.WriteString(" AND target_key = ?")
		args = append(args, *filter.TargetKey)
	}

	query.WriteString(" ORDER BY started_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*clinscrape.Run
	for rows.Next() {
		var run clinscrape.Run
		var startedAt string
		var durationMS int64

		if err := rows.Scan(&run.ID, &run.TargetKey, &run.SiteName, &run.Provider, &run.Model,
			&run.Products, &run.Treatments, &run.Pages, &run.Failed, &startedAt, &durationMS); err != nil {
			return nil, err
		}

		run.StartedAt, err = parseRFC3339(startedAt, "started_at")
		if err != nil {
			return nil, err
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// FindProductsByRun retrieves the products stored for a run in insertion
// order. Returns ENOTFOUND if the run does not exist.
func (s *RunService) FindProductsByRun(ctx context.Context, runID string) ([]*clinscrape.Product, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE id = ?", runID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, clinscrape.Errorf(clinscrape.ENOTFOUND, "run not found")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM products WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*clinscrape.Product{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var p clinscrape.Product
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		products = append(products, &p)
	}

	return products, rows.Err()
}
