package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantmetrics/schemamap/internal/catalog"
	"github.com/plantmetrics/schemamap/internal/handler"
	"github.com/plantmetrics/schemamap/internal/mapping"
	"github.com/plantmetrics/schemamap/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(Router(Config{
		Catalog: catalog.Default(),
		Store:   store.NewMemoryStore(),
	}))
	t.Cleanup(srv.Close)
	return srv
}

// doJSON issues a request with a JSON body and decodes the JSON response
// into out (when out is non-nil).
func doJSON(t *testing.T, method, url string, body, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	resp := doJSON(t, http.MethodGet, srv.URL+"/healthz", nil, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestCatalogEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var body struct {
		Fields []catalog.Field `json:"fields"`
		Tiers  []catalog.Tier  `json:"tiers"`
	}
	resp := doJSON(t, http.MethodGet, srv.URL+"/v1/catalog", nil, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body.Fields)
	require.Len(t, body.Tiers, 3)
	assert.Equal(t, "Essential", body.Tiers[0].Name)
}

func TestAutoMapEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var body handler.AutoMapResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/mappings/auto", handler.AutoMapRequest{
		Headers: []string{"WO #", "Planned Material Cost", "Actual Material Cost", "Notes"},
	}, &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Mappings, 4)
	assert.Equal(t, []string{"Notes"}, body.UnmappedColumns)
	assert.Equal(t, 1, body.DataTier.Tier)
	assert.True(t, body.Report.Success)
}

func TestAutoMapEndpointRejectsEmptyHeaders(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/mappings/auto", handler.AutoMapRequest{}, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "NO_HEADERS", body["code"])
}

func TestClassifyEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var body struct {
		Tier               int      `json:"tier"`
		MissingForNextTier []string `json:"missing_for_next_tier"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/tiers/classify", handler.ClassifyRequest{
		TargetFields: []string{
			"work_order_number", "planned_material_cost", "actual_material_cost",
			"material_code", "supplier_id",
		},
	}, &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, body.Tier)
	assert.Contains(t, body.MissingForNextTier, "machine_id")
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var body mapping.ValidationResult
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/mappings/validate", handler.ValidateRequest{
		Mappings: tier2Mappings(),
	}, &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Valid)
	assert.Equal(t, 2, body.DataTier.Tier)
}

func TestUploadLifecycle(t *testing.T) {
	srv := newTestServer(t)

	var created handler.UploadResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/uploads", handler.CreateUploadRequest{
		Filename: "costs.csv",
		Headers:  []string{"Work Order Number", "Planned Material Cost", "Actual Material Cost"},
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, created.Upload)
	assert.Equal(t, 1, created.Tier)
	assert.Equal(t, 1, created.DataTier.Tier)

	uploadURL := srv.URL + "/v1/uploads/" + created.ID.String()

	var fetched handler.UploadResponse
	resp = doJSON(t, http.MethodGet, uploadURL, nil, &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Len(t, fetched.Mappings, 3)

	var listed struct {
		Uploads []*store.Upload `json:"uploads"`
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/uploads", nil, &listed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, listed.Uploads, 1)
	assert.Equal(t, created.ID, listed.Uploads[0].ID)

	// Confirming an edited mapping that reaches tier 2.
	var vr mapping.ValidationResult
	resp = doJSON(t, http.MethodPut, uploadURL+"/mappings", handler.SaveMappingsRequest{
		Mappings: tier2Mappings(),
	}, &vr)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, vr.Valid)

	resp = doJSON(t, http.MethodGet, uploadURL, nil, &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, fetched.Tier)
	assert.Equal(t, 2, fetched.DataTier.Tier)
}

func TestSaveMappingsRejectsInvalid(t *testing.T) {
	srv := newTestServer(t)

	var created handler.UploadResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/uploads", handler.CreateUploadRequest{
		Filename: "costs.csv",
		Headers:  []string{"Work Order Number", "Planned Material Cost", "Actual Material Cost"},
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Dropping a required field must be rejected without persisting.
	var vr mapping.ValidationResult
	resp = doJSON(t, http.MethodPut, srv.URL+"/v1/uploads/"+created.ID.String()+"/mappings",
		handler.SaveMappingsRequest{Mappings: tier2Mappings()[:2]}, &vr)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.False(t, vr.Valid)
	assert.NotEmpty(t, vr.Errors)

	var fetched handler.UploadResponse
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/uploads/"+created.ID.String(), nil, &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, fetched.Mappings, 3, "rejected edit must not overwrite the stored mapping")
}

func TestUploadNotFoundAndBadID(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	resp := doJSON(t, http.MethodGet, srv.URL+"/v1/uploads/0b36e09c-93ac-4a63-b0ad-849ba92fcd57", nil, &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])

	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/uploads/not-a-uuid", nil, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", body["code"])
}

func tier2Mappings() []mapping.Mapping {
	manual := func(source, target string) mapping.Mapping {
		return mapping.Mapping{
			SourceColumn: source,
			TargetField:  target,
			Confidence:   1.0,
			MatchType:    "manual",
		}
	}
	return []mapping.Mapping{
		manual("Work Order Number", "work_order_number"),
		manual("Planned Material Cost", "planned_material_cost"),
		manual("Actual Material Cost", "actual_material_cost"),
		manual("Material", "material_code"),
		manual("Supplier", "supplier_id"),
		manual("Run Date", "production_date"),
	}
}
