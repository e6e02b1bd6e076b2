package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/ini.v1"
)

// DefaultSQLitePath is the embedded database file used when no credentials
// descriptor is configured.
const DefaultSQLitePath = "./reliability_test.db"

// Engine identifies which relational backend the store targets. The set is
// closed; the connection provider switches on it exhaustively.
type Engine string

const (
	EngineMySQL  Engine = "mysql"
	EngineSQLite Engine = "sqlite"
)

// MySQLParams holds connection parameters for the networked engine.
type MySQLParams struct {
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// SQLiteParams holds connection parameters for the embedded engine.
type SQLiteParams struct {
	DatabasePath string `json:"database_path"`
}

// Credentials is the resolved engine selection plus the matching parameter
// bundle. It is constructed once at startup and immutable afterwards; pass it
// by value into the connection provider.
type Credentials struct {
	Engine Engine
	MySQL  MySQLParams
	SQLite SQLiteParams
}

// descriptor mirrors the JSON credentials descriptor on disk.
type descriptor struct {
	Engine string       `json:"engine"`
	MySQL  MySQLParams  `json:"mysql"`
	SQLite SQLiteParams `json:"sqlite"`
}

// descriptorSchema constrains the descriptor shape before decoding. Unknown
// engines are rejected here rather than falling back silently.
const descriptorSchema = `{
	"type": "object",
	"required": ["engine"],
	"properties": {
		"engine": {"type": "string", "enum": ["mysql", "sqlite"]},
		"mysql": {
			"type": "object",
			"properties": {
				"host": {"type": "string"},
				"user": {"type": "string"},
				"password": {"type": "string"},
				"database": {"type": "string"}
			}
		},
		"sqlite": {
			"type": "object",
			"properties": {
				"database_path": {"type": "string"}
			}
		}
	}
}`

// Default returns embedded-engine credentials pointing at the fallback
// database file.
func Default() Credentials {
	return Credentials{
		Engine: EngineSQLite,
		SQLite: SQLiteParams{DatabasePath: DefaultSQLitePath},
	}
}

// Load resolves credentials from an INI config file whose [credentials]
// section names the path of a JSON credentials descriptor. A missing config
// file, a missing path key, or a missing descriptor file all resolve to the
// embedded-engine default. Load has no side effects beyond reading the files.
func Load(configPath string) (Credentials, error) {
	if configPath == "" {
		return Default(), nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	cfg, err := ini.Load(configPath)
	if err != nil {
		return Credentials{}, NewConfigurationError("failed to read config file %s: %v", configPath, err)
	}

	credsPath := cfg.Section("credentials").Key("path").String()
	if credsPath == "" {
		return Default(), nil
	}
	if !filepath.IsAbs(credsPath) {
		credsPath = filepath.Join(filepath.Dir(configPath), credsPath)
	}

	return LoadDescriptor(credsPath)
}

// LoadDescriptor parses and validates a JSON credentials descriptor. Values of
// the form $NAME are resolved from the process environment, so descriptors can
// reference deployment secrets without embedding them.
func LoadDescriptor(path string) (Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Credentials{}, NewConfigurationError("failed to read credentials descriptor %s: %v", path, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(descriptorSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return Credentials{}, NewConfigurationError("credentials descriptor %s is not valid JSON: %v", path, err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return Credentials{}, NewConfigurationError("invalid credentials descriptor %s: %s", path, strings.Join(issues, "; "))
	}

	var doc descriptor
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Credentials{}, NewConfigurationError("failed to parse credentials descriptor %s: %v", path, err)
	}

	creds := Credentials{Engine: Engine(doc.Engine)}
	switch creds.Engine {
	case EngineMySQL:
		creds.MySQL = MySQLParams{
			Host:     expandEnv(doc.MySQL.Host),
			User:     expandEnv(doc.MySQL.User),
			Password: expandEnv(doc.MySQL.Password),
			Database: expandEnv(doc.MySQL.Database),
		}
	case EngineSQLite:
		creds.SQLite = SQLiteParams{DatabasePath: expandEnv(doc.SQLite.DatabasePath)}
	}

	if err := creds.Validate(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// Validate checks that the selected engine's parameter bundle is complete.
func (c Credentials) Validate() error {
	switch c.Engine {
	case EngineMySQL:
		var missing []string
		if c.MySQL.Host == "" {
			missing = append(missing, "host")
		}
		if c.MySQL.User == "" {
			missing = append(missing, "user")
		}
		if c.MySQL.Password == "" {
			missing = append(missing, "password")
		}
		if c.MySQL.Database == "" {
			missing = append(missing, "database")
		}
		if len(missing) > 0 {
			return NewConfigurationError("mysql credentials missing %s", strings.Join(missing, ", "))
		}
	case EngineSQLite:
		if c.SQLite.DatabasePath == "" {
			return NewConfigurationError("sqlite credentials missing database_path")
		}
	default:
		return NewConfigurationError("unsupported database engine %q", string(c.Engine))
	}
	return nil
}

// expandEnv resolves a $NAME value from the process environment. Unresolvable
// references are kept verbatim so Validate can report them as present but the
// engine rejects them, matching the descriptor convention.
func expandEnv(value string) string {
	if !strings.HasPrefix(value, "$") {
		return value
	}
	if resolved, ok := os.LookupEnv(value[1:]); ok {
		return resolved
	}
	return value
}
