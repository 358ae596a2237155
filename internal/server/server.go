// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plantmetrics/schemamap/internal/catalog"
	"github.com/plantmetrics/schemamap/internal/handler"
	"github.com/plantmetrics/schemamap/internal/store"
	"github.com/plantmetrics/schemamap/internal/wire"
)

// Config holds server configuration.
type Config struct {
	Port    int
	Catalog *catalog.Registry
	Store   store.Store
}

// Router builds the full route table. Split out from Run so tests can mount
// it on httptest servers.
func Router(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	mh := handler.NewMappingHandler(cfg.Catalog)
	r.Get("/v1/catalog", mh.Catalog)
	r.Post("/v1/mappings/auto", mh.AutoMap)
	r.Post("/v1/mappings/validate", mh.Validate)
	r.Post("/v1/tiers/classify", mh.Classify)

	uh := handler.NewUploadHandler(cfg.Store, cfg.Catalog)
	r.Post("/v1/uploads", uh.CreateUpload)
	r.Get("/v1/uploads", uh.ListUploads)
	r.Get("/v1/uploads/{id}", uh.GetUpload)
	r.Put("/v1/uploads/{id}/mappings", uh.SaveMappings)

	r.Handle("/v1/mappings/session", wire.NewHandler(cfg.Catalog))

	return handler.Recovery(handler.Logging(r))
}

// Run starts the HTTP server with all routes registered and shuts it down
// when ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("starting server on %s", addr)

	server := &http.Server{
		Addr:    addr,
		Handler: Router(cfg),
	}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	return server.ListenAndServe()
}
