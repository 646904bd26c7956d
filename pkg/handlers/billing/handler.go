package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/de-tools/billing-atlas/pkg/adapters"
	"github.com/de-tools/billing-atlas/pkg/models/api"
	"github.com/de-tools/billing-atlas/pkg/models/domain"
	"github.com/de-tools/billing-atlas/pkg/services/analytics"
	"github.com/de-tools/billing-atlas/pkg/services/export"
	"github.com/de-tools/billing-atlas/pkg/services/ingest"
	"github.com/de-tools/billing-atlas/pkg/store/dataset"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxUploadBytes = 64 << 20

type Handler struct {
	analytics *analytics.Controller
	store     *dataset.Store
	fetcher   *ingest.Fetcher
	now       func() time.Time
}

func NewHandler(ctrl *analytics.Controller, store *dataset.Store, fetcher *ingest.Fetcher) *Handler {
	return &Handler{
		analytics: ctrl,
		store:     store,
		fetcher:   fetcher,
		now:       time.Now,
	}
}

// CreateDataset ingests an uploaded billing sheet. CSV bodies are accepted
// directly; multipart uploads may carry either a .csv or .xlsx file.
func (h *Handler) CreateDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	records, err := h.readUpload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := h.store.Create(records)
	weeks := h.analytics.Weekly(ctx, records)

	logger.Info().
		Str("dataset", id).
		Int("records", len(records)).
		Int("weeks", len(weeks)).
		Msg("dataset created")

	writeJSON(ctx, w, http.StatusCreated, api.DatasetCreated{ID: id, Records: len(records), Weeks: len(weeks)})
}

// FetchDataset ingests a billing sheet from a remote CSV URL.
func (h *Handler) FetchDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		http.Error(w, "invalid url", http.StatusBadRequest)
		return
	}

	records, err := h.fetcher.FetchCSV(ctx, req.URL)
	if err != nil {
		http.Error(w, fmt.Sprintf("fetch failed: %v", err), http.StatusBadGateway)
		return
	}

	id := h.store.Create(records)
	weeks := h.analytics.Weekly(ctx, records)

	writeJSON(ctx, w, http.StatusCreated, api.DatasetCreated{ID: id, Records: len(records), Weeks: len(weeks)})
}

func (h *Handler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ds, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	weeks := h.analytics.Weekly(ctx, ds.Records)
	writeJSON(ctx, w, http.StatusOK, adapters.MapWeeklyAggregatesDomainToApi(weeks))
}

func (h *Handler) GetTopClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ds, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	stats := h.analytics.TopClients(ctx, ds.Records)
	writeJSON(ctx, w, http.StatusOK, adapters.MapClientWeekStatsDomainToApi(stats))
}

func (h *Handler) GetChanges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ds, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	changes := h.analytics.Changes(ctx, ds.Records)
	writeJSON(ctx, w, http.StatusOK, adapters.MapClientHoursChangesDomainToApi(changes))
}

func (h *Handler) GetFunnel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ds, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	now, ok := h.referenceDate(w, r)
	if !ok {
		return
	}

	report := h.analytics.Funnel(ctx, ds.Records, ds.Overrides, ds.Notes, now)
	writeJSON(ctx, w, http.StatusOK, adapters.MapFunnelReportDomainToApi(report))
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ds, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	now, ok := h.referenceDate(w, r)
	if !ok {
		return
	}

	dash := h.analytics.Dashboard(ctx, ds.Records, ds.Overrides, ds.Notes, now)
	writeJSON(ctx, w, http.StatusOK, adapters.MapDashboardDomainToApi(dash))
}

// referenceDate resolves the optional ?now=YYYY-MM-DD query parameter,
// defaulting to the current date.
func (h *Handler) referenceDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	param := r.URL.Query().Get("now")
	if param == "" {
		return h.now().UTC(), true
	}
	parsed, err := time.Parse("2006-01-02", param)
	if err != nil {
		http.Error(w, "invalid 'now' date format. Expected format: YYYY-MM-DD", http.StatusBadRequest)
		return time.Time{}, false
	}
	return parsed, true
}

func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	var req api.OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "dataset")
	client := chi.URLParam(r, "client")
	if err := h.store.SetOverride(id, client, req.Reason); err != nil {
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetNotes(w http.ResponseWriter, r *http.Request) {
	var req api.NotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "dataset")
	client := chi.URLParam(r, "client")
	if err := h.store.SetNotes(id, client, req.Notes); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportConversions streams the pending-conversion list as a CRM-ready CSV.
func (h *Handler) ExportConversions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ds, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	report := h.analytics.Funnel(ctx, ds.Records, ds.Overrides, ds.Notes, h.now().UTC())

	filename := fmt.Sprintf("conversion-leads-%s.csv", h.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteConversionLeads(w, report.Pending); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to write conversion export")
	}
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (dataset.Dataset, bool) {
	id := chi.URLParam(r, "dataset")
	ds, err := h.store.Snapshot(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return dataset.Dataset{}, false
	}
	return ds, true
}

func (h *Handler) readUpload(r *http.Request) ([]domain.SessionRecord, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, fmt.Errorf("invalid multipart upload: %w", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing file field: %w", err)
		}
		defer file.Close()

		if strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
			return ingest.ParseWorkbook(file)
		}
		body, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		return ingest.ParseCSV(string(body)), nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return ingest.ParseCSV(string(body)), nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}
