package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ironvale/configcore/internal/configstore"
)

// handleHealth returns the engine health verdict.
// GET /api/v1/health
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := s.store.Health()

	status := http.StatusOK
	if health.Status != configstore.HealthHealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status":           health.Status,
		"version":          s.version,
		"errors":           health.Errors,
		"missing_required": health.MissingRequired,
	})
}

// handleStatus returns operational statistics for the store.
// GET /api/v1/status
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Status())
}

// handleValidate runs full-store validation and returns the report.
// GET /api/v1/validate
func (s *Server) handleValidate(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ValidateAll())
}

// handleListConfig returns every key with sensitive values masked.
// GET /api/v1/config
func (s *Server) handleListConfig(w http.ResponseWriter, _ *http.Request) {
	values := s.store.GetAll(false)
	writeJSON(w, http.StatusOK, map[string]any{
		"values": values,
		"count":  len(values),
	})
}

// configEntryResponse is the wire form of one configuration entry.
type configEntryResponse struct {
	Key         string   `json:"key"`
	Value       any      `json:"value"`
	Source      string   `json:"source"`
	Scope       string   `json:"scope"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Sensitive   bool     `json:"sensitive"`
	Description string   `json:"description,omitempty"`
	Rules       []string `json:"rules,omitempty"`
	LastUpdated string   `json:"last_updated"`
}

// handleGetConfig returns a single entry, masked when sensitive.
// GET /api/v1/config/{key}
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	entry, ok := s.store.Entry(key)
	if !ok {
		writeNotFound(w, "key not found: "+key)
		return
	}

	writeJSON(w, http.StatusOK, configEntryResponse{
		Key:         entry.Key,
		Value:       entryValue(&entry),
		Source:      string(entry.Source),
		Scope:       string(entry.Scope),
		Type:        entry.Type.String(),
		Required:    entry.Required,
		Sensitive:   entry.Sensitive,
		Description: entry.Description,
		Rules:       ruleStrings(entry.Rules),
		LastUpdated: entry.LastUpdated.Format(time.RFC3339),
	})
}

// setConfigRequest is the body of a PUT /config/{key} request.
type setConfigRequest struct {
	Value       any      `json:"value"`
	Type        string   `json:"type,omitempty"`
	Rules       []string `json:"rules,omitempty"`
	Required    *bool    `json:"required,omitempty"`
	Sensitive   *bool    `json:"sensitive,omitempty"`
	Description string   `json:"description,omitempty"`
}

// handleSetConfig validates and stores a value at override priority.
// PUT /api/v1/config/{key}
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req setConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	opts := []configstore.SetOption{configstore.WithSource(configstore.SourceOverride)}
	if req.Type != "" {
		opts = append(opts, configstore.WithType(configstore.KindFromName(req.Type)))
	}
	if len(req.Rules) > 0 {
		opts = append(opts, configstore.WithRules(req.Rules...))
	}
	if req.Required != nil {
		opts = append(opts, configstore.WithRequired(*req.Required))
	}
	if req.Sensitive != nil {
		opts = append(opts, configstore.WithSensitive(*req.Sensitive))
	}
	if req.Description != "" {
		opts = append(opts, configstore.WithDescription(req.Description))
	}

	if err := s.store.Set(key, req.Value, opts...); err != nil {
		var verr *configstore.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "validation failed for "+key, verr.Problems...)
			return
		}
		writeInternalError(w, err.Error())
		return
	}

	entry, _ := s.store.Entry(key)
	writeJSON(w, http.StatusOK, map[string]any{
		"key":   key,
		"value": entryValue(&entry),
	})
}

// handleDeleteConfig removes an entry.
// DELETE /api/v1/config/{key}
func (s *Server) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if !s.store.Delete(key) {
		writeNotFound(w, "key not found: "+key)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": key})
}

// handleWebSocket upgrades the connection onto the change-notification hub.
// GET /api/v1/ws
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeNotFound(w, "websocket feed not enabled")
		return
	}
	s.hub.HandleUpgrade(w, r)
}

// entryValue renders an entry's value for a response, masking sensitive
// values and keeping native JSON types otherwise.
func entryValue(e *configstore.Entry) any {
	if e.Sensitive {
		return e.DisplayValue()
	}
	return e.Value.Any()
}

func ruleStrings(rules []configstore.Rule) []string {
	if len(rules) == 0 {
		return nil
	}
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Raw())
	}
	return out
}
