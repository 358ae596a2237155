// Package wire defines the WebSocket protocol for interactive mapping
// sessions: the mapping UI re-runs auto-mapping, tier classification, and
// validation live while the user edits column assignments.
package wire

import (
	"encoding/json"

	"github.com/plantmetrics/schemamap/internal/mapping"
	"github.com/plantmetrics/schemamap/internal/tier"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "map", "classify", "validate", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// MapData is the payload for "map" messages.
type MapData struct {
	Headers []string `json:"headers"`
}

// ClassifyData is the payload for "classify" messages.
type ClassifyData struct {
	TargetFields []string `json:"target_fields"`
}

// ValidateData is the payload for "validate" messages.
type ValidateData struct {
	Mappings []mapping.Mapping `json:"mappings"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "mapped", "classified", "validated", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// MappedData carries an auto-mapping preview and its tier.
type MappedData struct {
	mapping.AutoMapResult
	DataTier tier.Result    `json:"data_tier"`
	Report   mapping.Report `json:"report"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
