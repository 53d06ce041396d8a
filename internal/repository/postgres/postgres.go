package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixmycity/backend/internal/domain"
)

// pool is the subset of *pgxpool.Pool the repository uses
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresRepository implements domain.ComplaintRepository
type PostgresRepository struct {
	pool pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(p *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: p}
}

const complaintColumns = `id, category, severity, description, latitude, longitude,
	COALESCE(area_name, ''), created_at, status, area_importance`

// CreateComplaint persists a complaint and returns it with the assigned ID
func (r *PostgresRepository) CreateComplaint(ctx context.Context, c domain.Complaint) (domain.Complaint, error) {
	query := `
		INSERT INTO complaints (
			category, severity, description, latitude, longitude,
			area_name, created_at, status, area_importance
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		c.Category, int(c.Severity), c.Description, c.Latitude, c.Longitude,
		c.AreaName, c.CreatedAt, string(c.Status), float64(c.AreaImportance),
	).Scan(&c.ID)
	if err != nil {
		return domain.Complaint{}, fmt.Errorf("postgres: failed to save complaint: %w", err)
	}

	return c, nil
}

// GetComplaint retrieves a single complaint
func (r *PostgresRepository) GetComplaint(ctx context.Context, id int64) (domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`

	c, err := scanComplaint(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Complaint{}, fmt.Errorf("postgres: complaint %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Complaint{}, fmt.Errorf("postgres: failed to get complaint %d: %w", id, err)
	}

	return c, nil
}

// ListComplaints retrieves complaints matching the filter, newest first
func (r *PostgresRepository) ListComplaints(ctx context.Context, f domain.ComplaintFilter) ([]domain.Complaint, error) {
	query, args := buildListQuery(f)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query complaints: %w", err)
	}
	defer rows.Close()

	results := []domain.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan complaint row: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate complaints: %w", err)
	}

	return results, nil
}

// UpdateStatus marks a complaint resolved or unresolved and logs the action.
// A single statement keeps the status and its history row consistent.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, a domain.ComplaintAction) error {
	query := `
		WITH updated AS (
			UPDATE complaints SET status = $2 WHERE id = $1 RETURNING id
		)
		INSERT INTO complaint_actions (complaint_id, action, actor, notes, created_at)
		SELECT id, $2, NULLIF($3, ''), NULLIF($4, ''), $5 FROM updated
	`

	tag, err := r.pool.Exec(ctx, query, a.ComplaintID, string(a.Action), a.Actor, a.Notes, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to update complaint %d: %w", a.ComplaintID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: complaint %d: %w", a.ComplaintID, domain.ErrNotFound)
	}

	return nil
}

// ListActions returns the status history of a complaint, newest first
func (r *PostgresRepository) ListActions(ctx context.Context, complaintID int64) ([]domain.ComplaintAction, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM complaints WHERE id = $1)`, complaintID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to look up complaint %d: %w", complaintID, err)
	}
	if !exists {
		return nil, fmt.Errorf("postgres: complaint %d: %w", complaintID, domain.ErrNotFound)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, complaint_id, action, COALESCE(actor, ''), COALESCE(notes, ''), created_at
		FROM complaint_actions WHERE complaint_id = $1
		ORDER BY created_at DESC, id DESC`, complaintID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query actions: %w", err)
	}
	defer rows.Close()

	actions := []domain.ComplaintAction{}
	for rows.Next() {
		var (
			a      domain.ComplaintAction
			action string
		)
		if err := rows.Scan(&a.ID, &a.ComplaintID, &action, &a.Actor, &a.Notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan action row: %w", err)
		}
		a.Action = domain.Status(action)
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate actions: %w", err)
	}

	return actions, nil
}

// GetAnalytics computes the dashboard read model with GROUP BY queries
func (r *PostgresRepository) GetAnalytics(ctx context.Context, since time.Time) (domain.Analytics, error) {
	var a domain.Analytics

	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints`).Scan(&a.Total); err != nil {
		return domain.Analytics{}, fmt.Errorf("postgres: failed to count complaints: %w", err)
	}

	var err error
	if a.ByCategory, err = r.queryBuckets(ctx, `
		SELECT category, COUNT(*) FROM complaints
		GROUP BY category ORDER BY COUNT(*) DESC, category`); err != nil {
		return domain.Analytics{}, err
	}
	if a.ByStatus, err = r.queryBuckets(ctx, `
		SELECT status, COUNT(*) FROM complaints
		GROUP BY status ORDER BY status`); err != nil {
		return domain.Analytics{}, err
	}
	if a.BySeverity, err = r.queryBuckets(ctx, `
		SELECT severity::text, COUNT(*) FROM complaints
		GROUP BY severity ORDER BY severity DESC`); err != nil {
		return domain.Analytics{}, err
	}
	if a.RecentTrends, err = r.queryBuckets(ctx, `
		SELECT to_char(date_trunc('day', created_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS day, COUNT(*)
		FROM complaints WHERE created_at >= $1
		GROUP BY day ORDER BY day`, since); err != nil {
		return domain.Analytics{}, err
	}

	return a, nil
}

func (r *PostgresRepository) queryBuckets(ctx context.Context, query string, args ...any) ([]domain.CountBucket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query analytics: %w", err)
	}
	defer rows.Close()

	buckets := []domain.CountBucket{}
	for rows.Next() {
		var b domain.CountBucket
		if err := rows.Scan(&b.Key, &b.Count); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan analytics row: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// buildListQuery translates a filter into SQL with positional arguments
func buildListQuery(f domain.ComplaintFilter) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + complaintColumns + ` FROM complaints WHERE 1=1`)

	add := func(cond string, v any) {
		args = append(args, v)
		fmt.Fprintf(&sb, " AND "+cond, len(args))
	}

	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Severity != 0 {
		add("severity = $%d", int(f.Severity))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if !f.From.IsZero() {
		add("created_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("created_at <= $%d", f.To)
	}
	if f.LocatedOnly {
		sb.WriteString(" AND latitude IS NOT NULL AND longitude IS NOT NULL")
	}

	sb.WriteString(" ORDER BY created_at DESC, id DESC")
	return sb.String(), args
}

func scanComplaint(row pgx.Row) (domain.Complaint, error) {
	var (
		c          domain.Complaint
		severity   int
		status     string
		importance float64
	)
	err := row.Scan(
		&c.ID, &c.Category, &severity, &c.Description, &c.Latitude, &c.Longitude,
		&c.AreaName, &c.CreatedAt, &status, &importance,
	)
	if err != nil {
		return domain.Complaint{}, err
	}
	c.Severity = domain.Severity(severity)
	c.Status = domain.Status(status)
	c.AreaImportance = domain.AreaImportance(importance)
	return c, nil
}
