package storage

import (
	"context"
	"strings"

	"github.com/smswithoutborders/reliability-store/internal/config"
)

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS reliability_events (
	id BIGINT NOT NULL AUTO_INCREMENT,
	client_id VARCHAR(255) NOT NULL,
	kind VARCHAR(32) NOT NULL,
	detail TEXT NULL,
	created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	PRIMARY KEY (id),
	INDEX idx_reliability_events_client_id (client_id),
	INDEX idx_reliability_events_kind (kind),
	INDEX idx_reliability_events_created_at (created_at)
)
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS reliability_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	detail TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_reliability_events_client_id ON reliability_events (client_id);
CREATE INDEX IF NOT EXISTS idx_reliability_events_kind ON reliability_events (kind);
CREATE INDEX IF NOT EXISTS idx_reliability_events_created_at ON reliability_events (created_at)
`

// EnsureSchema creates the reliability_events table and its indexes if they do
// not exist yet. Idempotent: the statements are IF NOT EXISTS guarded and the
// first successful run per provider is remembered, so later operations skip
// the DDL round-trip. Concurrent first calls serialize on the provider mutex.
func (p *Provider) EnsureSchema(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.schemaOK {
		return nil
	}
	if _, err := p.acquireLocked(ctx); err != nil {
		return err
	}

	var ddl string
	switch p.creds.Engine {
	case config.EngineMySQL:
		ddl = mysqlSchema
	case config.EngineSQLite:
		ddl = sqliteSchema
	}

	for _, stmt := range strings.Split(ddl, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return &SchemaError{Engine: string(p.creds.Engine), Op: "ensure_schema", Err: err}
		}
	}

	p.schemaOK = true
	p.logger.Debug("reliability_events schema ensured")
	return nil
}
