package configstore

// Service-specific projections: pure read compositions over the typed
// getters with documented defaults. They hold no state of their own — two
// calls may differ if the underlying entries changed in between.

// DatabaseSettings is the relational database client view.
type DatabaseSettings struct {
	URL            string
	PoolSize       int
	TimeoutSeconds int
}

// DatabaseSettings reads database.* keys. database.url has no usable
// default — it is a mission-critical key.
func (s *Store) DatabaseSettings() DatabaseSettings {
	return DatabaseSettings{
		URL:            s.GetString("database.url", ""),
		PoolSize:       int(s.GetInt("database.pool_size", 10)),
		TimeoutSeconds: int(s.GetInt("database.timeout_seconds", 30)),
	}
}

// RedisSettings is the cache/broker client view.
type RedisSettings struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisSettings reads redis.* keys, defaulting to a local unauthenticated
// instance.
func (s *Store) RedisSettings() RedisSettings {
	return RedisSettings{
		Host:     s.GetString("redis.host", "localhost"),
		Port:     int(s.GetInt("redis.port", 6379)),
		Password: s.GetString("redis.password", ""),
		DB:       int(s.GetInt("redis.db", 0)),
	}
}

// LLMSettings is the language-model client view.
type LLMSettings struct {
	Provider    string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
}

// LLMSettings reads llm.* keys.
func (s *Store) LLMSettings() LLMSettings {
	return LLMSettings{
		Provider:    s.GetString("llm.provider", "openai"),
		Model:       s.GetString("llm.model", "gpt-4"),
		APIKey:      s.GetString("llm.api_key", ""),
		Temperature: s.GetFloat("llm.temperature", 0.7),
		MaxTokens:   int(s.GetInt("llm.max_tokens", 4096)),
	}
}

// AgentSettings is the background agent runner view.
type AgentSettings struct {
	MaxConcurrent    int
	TimeoutSeconds   int
	RetryLimit       int
	HeartbeatSeconds int
}

// AgentSettings reads agent.* keys.
func (s *Store) AgentSettings() AgentSettings {
	return AgentSettings{
		MaxConcurrent:    int(s.GetInt("agent.max_concurrent", 5)),
		TimeoutSeconds:   int(s.GetInt("agent.timeout_seconds", 300)),
		RetryLimit:       int(s.GetInt("agent.retry_limit", 3)),
		HeartbeatSeconds: int(s.GetInt("agent.heartbeat_seconds", 30)),
	}
}

// WebSocketSettings is the realtime gateway view.
type WebSocketSettings struct {
	Host                string
	Port                int
	Path                string
	PingIntervalSeconds int
	PongTimeoutSeconds  int
	MaxMessageSize      int
}

// WebSocketSettings reads websocket.* keys.
func (s *Store) WebSocketSettings() WebSocketSettings {
	return WebSocketSettings{
		Host:                s.GetString("websocket.host", "0.0.0.0"),
		Port:                int(s.GetInt("websocket.port", 8765)),
		Path:                s.GetString("websocket.path", "/ws"),
		PingIntervalSeconds: int(s.GetInt("websocket.ping_interval", 30)),
		PongTimeoutSeconds:  int(s.GetInt("websocket.pong_timeout", 10)),
		MaxMessageSize:      int(s.GetInt("websocket.max_message_size", 8192)),
	}
}

// SecuritySettings is the auth collaborator view. JWTSecret is returned
// raw — callers own keeping it out of logs; the engine masks it everywhere
// it renders values itself.
type SecuritySettings struct {
	JWTSecret          string
	TokenTTLMinutes    int
	RateLimitPerMinute int
}

// SecuritySettings reads security.* keys. security.jwt_secret is a
// mission-critical key with no default.
func (s *Store) SecuritySettings() SecuritySettings {
	return SecuritySettings{
		JWTSecret:          s.GetString("security.jwt_secret", ""),
		TokenTTLMinutes:    int(s.GetInt("security.token_ttl_minutes", 15)),
		RateLimitPerMinute: int(s.GetInt("security.rate_limit_per_minute", 100)),
	}
}

// DashboardSettings is the dashboard read-projection.
type DashboardSettings struct {
	Theme          string
	RefreshSeconds int
	PageSize       int
}

// DashboardSettings reads dashboard.* keys.
func (s *Store) DashboardSettings() DashboardSettings {
	return DashboardSettings{
		Theme:          s.GetString("dashboard.theme", "dark"),
		RefreshSeconds: int(s.GetInt("dashboard.refresh_seconds", 15)),
		PageSize:       int(s.GetInt("dashboard.page_size", 25)),
	}
}
