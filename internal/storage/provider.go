package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/smswithoutborders/reliability-store/internal/config"
	"github.com/smswithoutborders/reliability-store/internal/logging"
)

const (
	// Bounded retry budget for transient network failures on the networked
	// engine. Defaults per deployment experience, not tuned per site.
	connectAttempts    = 3
	connectBackoffBase = 200 * time.Millisecond

	maxIdleConns    = 5
	maxOpenConns    = 20
	connMaxLifetime = 60 * time.Minute
)

// Provider owns the engine-specific connection handle and its lifecycle. The
// handle is dialed lazily on first Acquire and closed by Release; after a
// Release the next Acquire dials fresh. Safe for concurrent use.
type Provider struct {
	creds  config.Credentials
	logger logging.Logger

	mu       sync.Mutex
	db       *sqlx.DB
	schemaOK bool
}

// NewProvider wires resolved credentials into a provider. No connection is
// opened until first use.
func NewProvider(creds config.Credentials, logger logging.Logger) *Provider {
	return &Provider{creds: creds, logger: logger}
}

// Engine reports which backend this provider targets.
func (p *Provider) Engine() config.Engine {
	return p.creds.Engine
}

// Acquire returns the pooled connection handle, dialing it on first use.
// Concurrent callers share the pool; database/sql serializes statements per
// underlying connection.
func (p *Provider) Acquire(ctx context.Context) (*sqlx.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquireLocked(ctx)
}

func (p *Provider) acquireLocked(ctx context.Context) (*sqlx.DB, error) {
	if p.db != nil {
		return p.db, nil
	}
	db, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}
	p.db = db
	return db, nil
}

// Release closes the connection handle on every exit path. Safe to call
// repeatedly; a released provider re-dials on the next Acquire.
func (p *Provider) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	p.schemaOK = false
	if err != nil {
		return &ConnectionError{Engine: string(p.creds.Engine), Op: "release", Err: err}
	}
	return nil
}

// dial switches exhaustively on the engine; the credential resolver guarantees
// the matching parameter bundle is populated.
func (p *Provider) dial(ctx context.Context) (*sqlx.DB, error) {
	switch p.creds.Engine {
	case config.EngineMySQL:
		return p.dialMySQL(ctx)
	case config.EngineSQLite:
		return p.dialSQLite(ctx)
	default:
		return nil, &ConnectionError{
			Engine: string(p.creds.Engine),
			Op:     "acquire",
			Err:    fmt.Errorf("unsupported engine"),
		}
	}
}

func (p *Provider) dialMySQL(ctx context.Context) (*sqlx.DB, error) {
	params := p.creds.MySQL
	p.bootstrapMySQLDatabase(ctx)

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = params.Host
	cfg.User = params.User
	cfg.Passwd = params.Password
	cfg.DBName = params.Database
	cfg.ParseTime = true

	db, err := sqlx.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, &ConnectionError{Engine: "mysql", Op: "acquire", Err: err}
	}

	db.SetMaxIdleConns(maxIdleConns)
	db.SetMaxOpenConns(maxOpenConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := p.pingWithRetry(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	p.logger.Info("connected to mysql",
		zap.String("host", params.Host),
		zap.String("database", params.Database))
	return db, nil
}

// bootstrapMySQLDatabase creates the target database on the server if absent,
// so a fresh deployment needs no manual setup. Failure here is not fatal: the
// account may lack CREATE DATABASE while the database already exists, in which
// case the real connection below succeeds anyway.
func (p *Provider) bootstrapMySQLDatabase(ctx context.Context) {
	params := p.creds.MySQL

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = params.Host
	cfg.User = params.User
	cfg.Passwd = params.Password

	srv, err := sqlx.Open("mysql", cfg.FormatDSN())
	if err != nil {
		p.logger.Warn("mysql database bootstrap skipped", zap.Error(err))
		return
	}
	defer srv.Close()

	stmt := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", params.Database)
	if _, err := srv.ExecContext(ctx, stmt); err != nil {
		p.logger.Warn("mysql database bootstrap failed",
			zap.String("database", params.Database),
			zap.Error(err))
	}
}

// pingWithRetry verifies reachability, retrying transient failures with
// bounded exponential backoff before giving up.
func (p *Provider) pingWithRetry(ctx context.Context, db *sqlx.DB) error {
	var lastErr error
	for attempt := 0; attempt < connectAttempts; attempt++ {
		if attempt > 0 {
			backoff := connectBackoffBase * time.Duration(1<<(attempt-1))
			p.logger.Warn("mysql unreachable, retrying",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return &ConnectionError{Engine: "mysql", Op: "acquire", Err: ctx.Err()}
			}
		}
		if lastErr = db.PingContext(ctx); lastErr == nil {
			return nil
		}
	}
	return &ConnectionError{Engine: "mysql", Op: "acquire", Err: lastErr}
}

func (p *Provider) dialSQLite(ctx context.Context) (*sqlx.DB, error) {
	path := p.creds.SQLite.DatabasePath

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &ConnectionError{Engine: "sqlite", Op: "acquire", Err: err}
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, &ConnectionError{Engine: "sqlite", Op: "acquire", Err: err}
	}

	// Single writer; avoids SQLITE_BUSY under concurrent records.
	db.SetMaxOpenConns(1)

	// Ping creates the backing file; an unwritable path surfaces here.
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &ConnectionError{Engine: "sqlite", Op: "acquire", Err: err}
	}

	p.logger.Info("opened sqlite database", zap.String("path", path))
	return db, nil
}
