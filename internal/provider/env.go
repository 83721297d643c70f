package provider

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/ironvale/configcore/internal/configstore"
)

// envKeyTable is the fixed mapping of environment variable names to
// configuration keys. Only names in this table are consulted — the
// environment is not scanned for arbitrary variables.
var envKeyTable = map[string]string{
	"ENVIRONMENT": "environment",

	"DATABASE_URL":             "database.url",
	"DATABASE_POOL_SIZE":       "database.pool_size",
	"DATABASE_TIMEOUT_SECONDS": "database.timeout_seconds",

	"REDIS_HOST":     "redis.host",
	"REDIS_PORT":     "redis.port",
	"REDIS_PASSWORD": "redis.password",
	"REDIS_DB":       "redis.db",

	"LLM_PROVIDER":    "llm.provider",
	"LLM_MODEL":       "llm.model",
	"LLM_API_KEY":     "llm.api_key",
	"LLM_TEMPERATURE": "llm.temperature",
	"LLM_MAX_TOKENS":  "llm.max_tokens",

	"AGENT_MAX_CONCURRENT":  "agent.max_concurrent",
	"AGENT_TIMEOUT_SECONDS": "agent.timeout_seconds",
	"AGENT_RETRY_LIMIT":     "agent.retry_limit",

	"WEBSOCKET_HOST": "websocket.host",
	"WEBSOCKET_PORT": "websocket.port",
	"WEBSOCKET_PATH": "websocket.path",

	"JWT_SECRET":            "security.jwt_secret",
	"TOKEN_TTL_MINUTES":     "security.token_ttl_minutes",
	"RATE_LIMIT_PER_MINUTE": "security.rate_limit_per_minute",

	"LOG_LEVEL": "logging.level",

	"DASHBOARD_THEME": "dashboard.theme",
}

// sensitiveMarkers classify variable names whose values must never render
// in cleartext. Matching is case-insensitive substring on the variable
// name.
var sensitiveMarkers = []string{"key", "secret", "password", "token", "credential"}

// Env reads configuration from process environment variables through the
// fixed name table. Values arrive as strings; the store coerces them toward
// each key's declared type, keeping the raw string when coercion fails.
type Env struct {
	// lookup defaults to os.LookupEnv; tests substitute their own.
	lookup func(string) (string, bool)
}

// NewEnv creates an environment provider backed by the process environment.
func NewEnv() *Env {
	return &Env{lookup: os.LookupEnv}
}

// Name identifies the provider in logs.
func (*Env) Name() string { return "env" }

// Source reports the provenance of environment-loaded entries.
func (*Env) Source() configstore.Source { return configstore.SourceEnvironment }

// Load reads every mapped variable that is set. It never fails.
func (p *Env) Load(_ context.Context) ([]configstore.Seed, error) {
	names := make([]string, 0, len(envKeyTable))
	for name := range envKeyTable {
		names = append(names, name)
	}
	sort.Strings(names)

	var seeds []configstore.Seed
	for _, name := range names {
		val, ok := p.lookup(name)
		if !ok {
			continue
		}
		seeds = append(seeds, configstore.Seed{
			Key:       envKeyTable[name],
			Value:     val,
			Sensitive: isSensitiveName(name),
		})
	}
	return seeds, nil
}

// isSensitiveName reports whether a variable name marks its value
// sensitive.
func isSensitiveName(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
