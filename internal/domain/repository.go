// Package domain defines the core interfaces and types for medilint.
package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence.
// All methods require tenantID for strict multi-tenancy isolation.
type Repository interface {
	// Rule and keyword operations. Keywords belong to exactly one rule
	// category and are saved alongside the rule.
	SaveRule(ctx context.Context, tenantID string, rule *ComplianceRule, keywords []string) error
	GetRule(ctx context.Context, tenantID string, category string) (*ComplianceRule, error)
	ListRules(ctx context.Context, tenantID string) ([]*ComplianceRule, error)
	ListKeywords(ctx context.Context, tenantID string, category string) ([]string, error)

	// Analysis results
	SaveAnalysis(ctx context.Context, tenantID string, rec *AnalysisRecord) error
	GetAnalysis(ctx context.Context, tenantID string, id string) (*AnalysisRecord, error)
	CountAnalysesSince(ctx context.Context, tenantID string, since time.Time) (int64, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
