package handler

import (
	"net/http"

	"github.com/plantmetrics/schemamap/internal/catalog"
	"github.com/plantmetrics/schemamap/internal/mapping"
	"github.com/plantmetrics/schemamap/internal/tier"
)

// MappingHandler serves the stateless mapping endpoints: auto-mapping
// previews, tier classification, and validation of user-edited mappings.
type MappingHandler struct {
	catalog    *catalog.Registry
	resolver   mapping.Assigner
	classifier *tier.Classifier
	validator  *mapping.Validator
}

// NewMappingHandler creates a handler over the given catalog.
func NewMappingHandler(reg *catalog.Registry) *MappingHandler {
	return &MappingHandler{
		catalog:    reg,
		resolver:   mapping.NewResolver(reg),
		classifier: tier.NewClassifier(reg),
		validator:  mapping.NewValidator(reg),
	}
}

// AutoMapRequest is the body of POST /v1/mappings/auto.
type AutoMapRequest struct {
	Headers []string `json:"headers"`
}

// AutoMapResponse pairs the mapping preview with its tier classification
// and the user-facing report.
type AutoMapResponse struct {
	mapping.AutoMapResult
	DataTier tier.Result    `json:"data_tier"`
	Report   mapping.Report `json:"report"`
}

// AutoMap handles POST /v1/mappings/auto.
func (h *MappingHandler) AutoMap(w http.ResponseWriter, r *http.Request) {
	var req AutoMapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body: "+err.Error())
		return
	}
	if len(req.Headers) == 0 {
		writeError(w, http.StatusBadRequest, "NO_HEADERS", "headers must not be empty")
		return
	}

	res := h.resolver.AutoMap(req.Headers)
	tr := h.classifier.Classify(mapping.TargetFields(res.Mappings))

	writeJSON(w, http.StatusOK, AutoMapResponse{
		AutoMapResult: res,
		DataTier:      tr,
		Report:        mapping.BuildReport(h.catalog, res, tr),
	})
}

// ValidateRequest is the body of POST /v1/mappings/validate.
type ValidateRequest struct {
	Mappings []mapping.Mapping `json:"mappings"`
}

// Validate handles POST /v1/mappings/validate.
func (h *MappingHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.validator.Validate(req.Mappings))
}

// ClassifyRequest is the body of POST /v1/tiers/classify.
type ClassifyRequest struct {
	TargetFields []string `json:"target_fields"`
}

// Classify handles POST /v1/tiers/classify.
func (h *MappingHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.classifier.Classify(req.TargetFields))
}

// Catalog handles GET /v1/catalog, returning the field definitions the UI
// offers in its manual-override dropdowns.
func (h *MappingHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"fields": h.catalog.Fields(),
		"tiers":  h.catalog.Tiers(),
	})
}
