package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/plantmetrics/schemamap/internal/catalog"
	"github.com/plantmetrics/schemamap/internal/mapping"
	"github.com/plantmetrics/schemamap/internal/store"
	"github.com/plantmetrics/schemamap/internal/tier"
)

// UploadHandler registers uploads, auto-maps their headers, and persists
// user-confirmed mappings.
type UploadHandler struct {
	store      store.Store
	catalog    *catalog.Registry
	resolver   mapping.Assigner
	classifier *tier.Classifier
	validator  *mapping.Validator
}

// NewUploadHandler creates an upload handler.
func NewUploadHandler(st store.Store, reg *catalog.Registry) *UploadHandler {
	return &UploadHandler{
		store:      st,
		catalog:    reg,
		resolver:   mapping.NewResolver(reg),
		classifier: tier.NewClassifier(reg),
		validator:  mapping.NewValidator(reg),
	}
}

// CreateUploadRequest is the body of POST /v1/uploads.
type CreateUploadRequest struct {
	Filename string   `json:"filename"`
	Headers  []string `json:"headers"`
}

// UploadResponse is an upload record plus its current tier classification.
type UploadResponse struct {
	*store.Upload
	DataTier tier.Result `json:"data_tier"`
}

// CreateUpload handles POST /v1/uploads: auto-maps the headers and persists
// the upload with its suggested mapping.
func (h *UploadHandler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	var req CreateUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body: "+err.Error())
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, "NO_FILENAME", "filename is required")
		return
	}
	if len(req.Headers) == 0 {
		writeError(w, http.StatusBadRequest, "NO_HEADERS", "headers must not be empty")
		return
	}

	res := h.resolver.AutoMap(req.Headers)
	tr := h.classifier.Classify(mapping.TargetFields(res.Mappings))

	u := &store.Upload{
		ID:         uuid.New(),
		Filename:   req.Filename,
		Headers:    req.Headers,
		Tier:       tr.Tier,
		Confidence: res.Confidence,
		Mappings:   res.Mappings,
	}
	if err := h.store.CreateUpload(r.Context(), u); err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{Upload: u, DataTier: tr})
}

// GetUpload handles GET /v1/uploads/{id}.
func (h *UploadHandler) GetUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	u, err := h.store.GetUpload(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	h.rehydrate(u.Mappings)
	tr := h.classifier.Classify(mapping.TargetFields(u.Mappings))
	writeJSON(w, http.StatusOK, UploadResponse{Upload: u, DataTier: tr})
}

// ListUploads handles GET /v1/uploads.
func (h *UploadHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	uploads, err := h.store.ListUploads(r.Context(), p.Limit, p.Offset)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	if uploads == nil {
		uploads = []*store.Upload{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"uploads": uploads})
}

// SaveMappingsRequest is the body of PUT /v1/uploads/{id}/mappings.
type SaveMappingsRequest struct {
	Mappings []mapping.Mapping `json:"mappings"`
}

// SaveMappings handles PUT /v1/uploads/{id}/mappings: validates a
// user-confirmed mapping and persists it when it passes. An invalid mapping
// is rejected with the validation outcome so the UI can surface the errors.
func (h *UploadHandler) SaveMappings(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	var req SaveMappingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body: "+err.Error())
		return
	}

	vr := h.validator.Validate(req.Mappings)
	if !vr.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, vr)
		return
	}

	if err := h.store.SaveMappings(r.Context(), id, req.Mappings, vr.DataTier.Tier); err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vr)
}

// rehydrate restores the catalog-derived mapping attributes that the store
// does not persist.
func (h *UploadHandler) rehydrate(mappings []mapping.Mapping) {
	for i := range mappings {
		if f := h.catalog.Field(mappings[i].TargetField); f != nil {
			mappings[i].DataType = f.DataType
			mappings[i].Required = f.Required
		}
	}
}
