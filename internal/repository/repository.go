// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/medilint/medilint/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveRule upserts a rule and replaces its keyword list atomically.
// New rules get the next sort_order so the evaluation order follows
// insertion order; updates keep their position.
func (r *SQLRepository) SaveRule(ctx context.Context, tenantID string, rule *domain.ComplianceRule, keywords []string) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}
	if rule.Category == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	}

	indicators, _ := json.Marshal(rule.Indicators)

	strict := 0
	if rule.Strict {
		strict = 1
	}
	enabled := 0
	if rule.Enabled {
		enabled = 1
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var sortOrder int
	err = tx.QueryRowContext(ctx,
		r.rebind(`SELECT COALESCE(MAX(sort_order)+1, 0) FROM compliance_rules WHERE tenant_id = ?`),
		tenantID,
	).Scan(&sortOrder)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO compliance_rules (
			tenant_id, category, title, description, severity,
			legal_basis, penalty, improvement_guide, strict, indicators,
			gate_expr, enabled, sort_order, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, category) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			severity = excluded.severity,
			legal_basis = excluded.legal_basis,
			penalty = excluded.penalty,
			improvement_guide = excluded.improvement_guide,
			strict = excluded.strict,
			indicators = excluded.indicators,
			gate_expr = excluded.gate_expr,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	if _, err := tx.ExecContext(ctx, r.rebind(query),
		tenantID, rule.Category, rule.Title, rule.Description, rule.Severity,
		rule.LegalBasis, rule.Penalty, rule.ImprovementGuide, strict, string(indicators),
		rule.GateExpr, enabled, sortOrder, now, now,
	); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		r.rebind(`DELETE FROM rule_keywords WHERE tenant_id = ? AND category = ?`),
		tenantID, rule.Category,
	); err != nil {
		return err
	}

	for i, keyword := range keywords {
		if _, err := tx.ExecContext(ctx,
			r.rebind(`INSERT INTO rule_keywords (tenant_id, category, keyword, sort_order) VALUES (?, ?, ?, ?)`),
			tenantID, rule.Category, keyword, i,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRule retrieves a rule by category with tenant isolation.
func (r *SQLRepository) GetRule(ctx context.Context, tenantID string, category string) (*domain.ComplianceRule, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT category, title, description, severity, legal_basis,
			   penalty, improvement_guide, strict, indicators, gate_expr, enabled
		FROM compliance_rules
		WHERE tenant_id = ? AND category = ?
	`

	rule, err := scanRule(r.db.QueryRowContext(ctx, r.rebind(query), tenantID, category))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rule, err
}

// ListRules retrieves all enabled rules for a tenant in insertion
// order.
func (r *SQLRepository) ListRules(ctx context.Context, tenantID string) ([]*domain.ComplianceRule, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT category, title, description, severity, legal_basis,
			   penalty, improvement_guide, strict, indicators, gate_expr, enabled
		FROM compliance_rules
		WHERE tenant_id = ? AND enabled = 1
		ORDER BY sort_order, category
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ruleSet []*domain.ComplianceRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		ruleSet = append(ruleSet, rule)
	}

	return ruleSet, rows.Err()
}

// ListKeywords retrieves the keyword list for a rule category.
func (r *SQLRepository) ListKeywords(ctx context.Context, tenantID string, category string) ([]string, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT keyword
		FROM rule_keywords
		WHERE tenant_id = ? AND category = ?
		ORDER BY sort_order
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var keyword string
		if err := rows.Scan(&keyword); err != nil {
			return nil, err
		}
		keywords = append(keywords, keyword)
	}

	return keywords, rows.Err()
}

// SaveAnalysis stores an analysis record with tenant isolation.
func (r *SQLRepository) SaveAnalysis(ctx context.Context, tenantID string, rec *domain.AnalysisRecord) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	result, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	query := `
		INSERT INTO analyses (
			id, tenant_id, source_type, status, score, result, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, r.rebind(query),
		rec.ID, tenantID, rec.SourceType, rec.Status, rec.Score,
		string(result), rec.CreatedAt,
	)
	return err
}

// GetAnalysis retrieves an analysis record by ID with tenant isolation.
func (r *SQLRepository) GetAnalysis(ctx context.Context, tenantID string, id string) (*domain.AnalysisRecord, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, source_type, status, score, result, created_at
		FROM analyses
		WHERE tenant_id = ? AND id = ?
	`

	var rec domain.AnalysisRecord
	var result string

	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, id).Scan(
		&rec.ID, &rec.TenantID, &rec.SourceType, &rec.Status, &rec.Score,
		&result, &rec.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if result != "" {
		if err := json.Unmarshal([]byte(result), &rec.Result); err != nil {
			return nil, fmt.Errorf("failed to parse analysis result: %w", err)
		}
	}

	return &rec, nil
}

// CountAnalysesSince counts analyses created at or after since.
func (r *SQLRepository) CountAnalysesSince(ctx context.Context, tenantID string, since time.Time) (int64, error) {
	if tenantID == "" {
		return 0, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT COUNT(*)
		FROM analyses
		WHERE tenant_id = ? AND created_at >= ?
	`

	var count int64
	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, since).Scan(&count)
	return count, err
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*domain.ComplianceRule, error) {
	var rule domain.ComplianceRule
	var strict, enabled int
	var indicators string

	err := row.Scan(
		&rule.Category, &rule.Title, &rule.Description, &rule.Severity,
		&rule.LegalBasis, &rule.Penalty, &rule.ImprovementGuide,
		&strict, &indicators, &rule.GateExpr, &enabled,
	)
	if err != nil {
		return nil, err
	}

	rule.Strict = strict == 1
	rule.Enabled = enabled == 1
	// A corrupt indicators column must not load as an indicator-free
	// rule, which would accept every keyword match.
	if indicators != "" {
		if err := json.Unmarshal([]byte(indicators), &rule.Indicators); err != nil {
			return nil, fmt.Errorf("failed to decode indicators for rule %s: %w", rule.Category, err)
		}
	}

	return &rule, nil
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
