package repository

// Schema definitions for the medilint database.
// Compatible with both SQLite and PostgreSQL.

const schemaRules = `
CREATE TABLE IF NOT EXISTS compliance_rules (
    tenant_id TEXT NOT NULL,
    category TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    severity TEXT NOT NULL,
    legal_basis TEXT,
    penalty TEXT,
    improvement_guide TEXT,
    strict INTEGER NOT NULL DEFAULT 0,
    indicators TEXT,
    gate_expr TEXT,
    enabled INTEGER NOT NULL DEFAULT 1,
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (tenant_id, category)
);

CREATE INDEX IF NOT EXISTS idx_rules_tenant ON compliance_rules(tenant_id);
CREATE INDEX IF NOT EXISTS idx_rules_enabled ON compliance_rules(tenant_id, enabled);
`

const schemaKeywords = `
CREATE TABLE IF NOT EXISTS rule_keywords (
    tenant_id TEXT NOT NULL,
    category TEXT NOT NULL,
    keyword TEXT NOT NULL,
    sort_order INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (tenant_id, category, keyword)
);

CREATE INDEX IF NOT EXISTS idx_keywords_category ON rule_keywords(tenant_id, category);
`

const schemaAnalyses = `
CREATE TABLE IF NOT EXISTS analyses (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    source_type TEXT NOT NULL,
    status TEXT NOT NULL,
    score INTEGER NOT NULL,
    result TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_tenant ON analyses(tenant_id);
CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(tenant_id, created_at);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaRules,
		schemaKeywords,
		schemaAnalyses,
	}
}
