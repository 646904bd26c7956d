package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingatlasmiddleware "github.com/de-tools/billing-atlas/pkg/server/middleware"

	"github.com/de-tools/billing-atlas/pkg/handlers/billing"
	"github.com/de-tools/billing-atlas/pkg/services/analytics"
	"github.com/de-tools/billing-atlas/pkg/services/ingest"
	"github.com/de-tools/billing-atlas/pkg/store/dataset"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
}

type Dependencies struct {
	Analytics *analytics.Controller
	Datasets  *dataset.Store
	Fetcher   *ingest.Fetcher
	Logger    zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

// ConfigureRouter builds the API router with request logging and panic
// recovery attached.
func ConfigureRouter(config Config) *chi.Mux {
	deps := config.Dependencies
	handler := billing.NewHandler(deps.Analytics, deps.Datasets, deps.Fetcher)

	router := chi.NewRouter()
	router.Use(billingatlasmiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/datasets", handler.CreateDataset)
		r.Post("/datasets/fetch", handler.FetchDataset)
		r.Route("/datasets/{dataset}", func(r chi.Router) {
			r.Get("/dashboard", handler.GetDashboard)
			r.Get("/weekly", handler.GetWeekly)
			r.Get("/clients/top", handler.GetTopClients)
			r.Get("/clients/changes", handler.GetChanges)
			r.Get("/funnel", handler.GetFunnel)
			r.Put("/clients/{client}/override", handler.SetOverride)
			r.Put("/clients/{client}/notes", handler.SetNotes)
			r.Get("/export/conversions", handler.ExportConversions)
		})
	})

	return router
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	config.Dependencies.Logger = logger
	router := ConfigureRouter(config)

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
