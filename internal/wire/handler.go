package wire

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/plantmetrics/schemamap/internal/catalog"
	"github.com/plantmetrics/schemamap/internal/mapping"
	"github.com/plantmetrics/schemamap/internal/tier"
)

// Handler manages WebSocket connections for interactive mapping sessions.
type Handler struct {
	catalog    *catalog.Registry
	resolver   mapping.Assigner
	classifier *tier.Classifier
	validator  *mapping.Validator
}

// NewHandler creates a WebSocket handler over the given catalog.
func NewHandler(reg *catalog.Registry) *Handler {
	return &Handler{
		catalog:    reg,
		resolver:   mapping.NewResolver(reg),
		classifier: tier.NewClassifier(reg),
		validator:  mapping.NewValidator(reg),
	}
}

// ServeHTTP upgrades to WebSocket and runs the message loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("wire: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	for {
		var msg ClientMessage
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("wire: connection closed: %v", websocket.CloseStatus(err))
			}
			return
		}

		switch msg.Type {
		case "map":
			h.handleMap(ctx, conn, msg)
		case "classify":
			h.handleClassify(ctx, conn, msg)
		case "validate":
			h.handleValidate(ctx, conn, msg)
		case "ping":
			h.send(ctx, conn, ServerMessage{Type: "pong", RequestID: msg.ID})
		default:
			h.sendError(ctx, conn, msg.ID, "unknown_type", fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

func (h *Handler) handleMap(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	var data MapData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid map data")
		return
	}
	if len(data.Headers) == 0 {
		h.sendError(ctx, conn, msg.ID, "no_headers", "headers must not be empty")
		return
	}

	res := h.resolver.AutoMap(data.Headers)
	tr := h.classifier.Classify(mapping.TargetFields(res.Mappings))
	h.send(ctx, conn, ServerMessage{
		Type:      "mapped",
		RequestID: msg.ID,
		Data: MappedData{
			AutoMapResult: res,
			DataTier:      tr,
			Report:        mapping.BuildReport(h.catalog, res, tr),
		},
	})
}

func (h *Handler) handleClassify(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	var data ClassifyData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid classify data")
		return
	}
	h.send(ctx, conn, ServerMessage{
		Type:      "classified",
		RequestID: msg.ID,
		Data:      h.classifier.Classify(data.TargetFields),
	})
}

func (h *Handler) handleValidate(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	var data ValidateData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid validate data")
		return
	}
	h.send(ctx, conn, ServerMessage{
		Type:      "validated",
		RequestID: msg.ID,
		Data:      h.validator.Validate(data.Mappings),
	})
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		log.Printf("wire: write: %v", err)
	}
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	h.send(ctx, conn, ServerMessage{
		Type:      "error",
		RequestID: requestID,
		Data:      ErrorData{Code: code, Message: message},
	})
}
