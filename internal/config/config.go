package config

import (
	"fmt"
	"os"
	"strings"
)

// Storage backends selectable with STORAGE_BACKEND
const (
	BackendMemory   = "memory"
	BackendNeo4j    = "neo4j"
	BackendPostgres = "postgres"
)

const (
	defaultOwnerEmail = "owner@career-ledger.local"
	// "!" marks an account with no usable password
	defaultOwnerPasswordHash = "!"
)

// Config contains runtime settings for the MCP server
type Config struct {
	LogLevel  string
	LogFormat string // json or console
	Host      string // default 0.0.0.0
	Port      string // default PORT env or 8080
	Backend   string // memory, neo4j or postgres
	Neo4j     struct {
		URI      string
		Username string
		Password string
		Database string
	}
	Postgres struct {
		URL string
	}
	Owner struct {
		Email        string
		PasswordHash string
	} // account bootstrapped at startup and used when a tool omits account_id
	SheetsCredsPath string
}

// Addr is the HTTP listen address
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Load populates config from environment variables
func Load() (Config, error) {
	cfg := Config{
		LogLevel:  "info",
		LogFormat: "json",
		Host:      "0.0.0.0",
		Port:      "8080",
		Backend:   BackendMemory,
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	if v := os.Getenv("MCP_HOST"); v != "" {
		cfg.Host = v
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(v))
	}

	cfg.Neo4j.URI = os.Getenv("NEO4J_URI")
	cfg.Neo4j.Username = os.Getenv("NEO4J_USERNAME")
	cfg.Neo4j.Password = os.Getenv("NEO4J_PASSWORD")
	cfg.Neo4j.Database = os.Getenv("NEO4J_DATABASE")

	cfg.Postgres.URL = os.Getenv("DATABASE_URL")

	cfg.Owner.Email = defaultOwnerEmail
	if v := os.Getenv("LEDGER_OWNER_EMAIL"); v != "" {
		cfg.Owner.Email = v
	}
	cfg.Owner.PasswordHash = defaultOwnerPasswordHash
	if v := os.Getenv("LEDGER_OWNER_PASSWORD_HASH"); v != "" {
		cfg.Owner.PasswordHash = v
	}

	cfg.SheetsCredsPath = os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH")

	var missingVars []string

	switch cfg.Backend {
	case BackendMemory:
	case BackendNeo4j:
		if cfg.Neo4j.URI == "" {
			missingVars = append(missingVars, "NEO4J_URI")
		}
		if cfg.Neo4j.Username == "" {
			missingVars = append(missingVars, "NEO4J_USERNAME")
		}
		if cfg.Neo4j.Password == "" {
			missingVars = append(missingVars, "NEO4J_PASSWORD")
		}
	case BackendPostgres:
		if cfg.Postgres.URL == "" {
			missingVars = append(missingVars, "DATABASE_URL")
		}
	default:
		return cfg, fmt.Errorf("unknown STORAGE_BACKEND %q: want %s, %s or %s",
			cfg.Backend, BackendMemory, BackendNeo4j, BackendPostgres)
	}

	if len(missingVars) > 0 {
		return cfg, fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	return cfg, nil
}
