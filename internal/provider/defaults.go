package provider

import (
	"context"

	"github.com/ironvale/configcore/internal/configstore"
)

// defaultEntry is one row of the compiled default table.
type defaultEntry struct {
	key         string
	value       any
	kind        configstore.Kind
	required    bool
	sensitive   bool
	description string
}

// defaultTable is the compiled configuration baseline. Mission-critical
// keys (database.url, security.jwt_secret) deliberately default to empty:
// a deployment must supply them through a higher-priority source or fail
// the startup gate.
var defaultTable = []defaultEntry{
	{key: "environment", value: "development", kind: configstore.KindString,
		description: "Deployment environment name"},

	{key: "database.url", value: "", kind: configstore.KindString, required: true, sensitive: true,
		description: "Database connection URL (mission-critical)"},
	{key: "database.pool_size", value: 10, kind: configstore.KindInt,
		description: "Database connection pool size"},
	{key: "database.timeout_seconds", value: 30, kind: configstore.KindInt,
		description: "Database operation timeout"},

	{key: "redis.host", value: "localhost", kind: configstore.KindString,
		description: "Redis host"},
	{key: "redis.port", value: 6379, kind: configstore.KindInt,
		description: "Redis port"},
	{key: "redis.password", value: "", kind: configstore.KindString, sensitive: true,
		description: "Redis password"},
	{key: "redis.db", value: 0, kind: configstore.KindInt,
		description: "Redis database index"},

	{key: "llm.provider", value: "openai", kind: configstore.KindString,
		description: "Language model provider"},
	{key: "llm.model", value: "gpt-4", kind: configstore.KindString,
		description: "Language model name"},
	{key: "llm.api_key", value: "", kind: configstore.KindString, sensitive: true,
		description: "Language model API key"},
	{key: "llm.temperature", value: 0.7, kind: configstore.KindFloat,
		description: "Sampling temperature"},
	{key: "llm.max_tokens", value: 4096, kind: configstore.KindInt,
		description: "Completion token budget"},

	{key: "agent.max_concurrent", value: 5, kind: configstore.KindInt,
		description: "Maximum concurrently running agents"},
	{key: "agent.timeout_seconds", value: 300, kind: configstore.KindInt,
		description: "Per-agent execution timeout"},
	{key: "agent.retry_limit", value: 3, kind: configstore.KindInt,
		description: "Agent retry attempts"},
	{key: "agent.heartbeat_seconds", value: 30, kind: configstore.KindInt,
		description: "Agent heartbeat interval"},

	{key: "websocket.host", value: "0.0.0.0", kind: configstore.KindString,
		description: "Realtime gateway bind host"},
	{key: "websocket.port", value: 8765, kind: configstore.KindInt,
		description: "Realtime gateway port"},
	{key: "websocket.path", value: "/ws", kind: configstore.KindString,
		description: "WebSocket upgrade path"},
	{key: "websocket.ping_interval", value: 30, kind: configstore.KindInt,
		description: "WebSocket ping interval (seconds)"},
	{key: "websocket.pong_timeout", value: 10, kind: configstore.KindInt,
		description: "WebSocket pong timeout (seconds)"},
	{key: "websocket.max_message_size", value: 8192, kind: configstore.KindInt,
		description: "WebSocket maximum inbound message size"},

	{key: "security.jwt_secret", value: "", kind: configstore.KindString, required: true, sensitive: true,
		description: "JWT signing secret (mission-critical)"},
	{key: "security.token_ttl_minutes", value: 15, kind: configstore.KindInt,
		description: "Access token lifetime"},
	{key: "security.rate_limit_per_minute", value: 100, kind: configstore.KindInt,
		description: "Per-client request budget"},

	{key: "logging.level", value: "info", kind: configstore.KindString,
		description: "Log level (debug, info, warn, error)"},

	{key: "dashboard.theme", value: "dark", kind: configstore.KindString,
		description: "Dashboard colour theme"},
	{key: "dashboard.refresh_seconds", value: 15, kind: configstore.KindInt,
		description: "Dashboard auto-refresh interval"},
	{key: "dashboard.page_size", value: 25, kind: configstore.KindInt,
		description: "Dashboard table page size"},
}

// Defaults supplies the compiled default table. It is the first provider in
// the standard chain, so every other source overrides it.
type Defaults struct{}

// NewDefaults creates the defaults provider.
func NewDefaults() *Defaults { return &Defaults{} }

// Name identifies the provider in logs.
func (*Defaults) Name() string { return "defaults" }

// Source reports the provenance of defaults.
func (*Defaults) Source() configstore.Source { return configstore.SourceDefault }

// Load returns the compiled default table. It never fails.
func (*Defaults) Load(_ context.Context) ([]configstore.Seed, error) {
	seeds := make([]configstore.Seed, 0, len(defaultTable))
	for _, d := range defaultTable {
		seeds = append(seeds, configstore.Seed{
			Key:         d.key,
			Value:       d.value,
			Type:        d.kind,
			Required:    d.required,
			Sensitive:   d.sensitive,
			Description: d.description,
		})
	}
	return seeds, nil
}

// CriticalKeys returns the keys the default table marks mission-critical,
// for use as the store's startup gate.
func CriticalKeys() []string {
	var keys []string
	for _, d := range defaultTable {
		if d.required {
			keys = append(keys, d.key)
		}
	}
	return keys
}
