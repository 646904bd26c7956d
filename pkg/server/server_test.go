package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/billing-atlas/pkg/models/api"
	"github.com/de-tools/billing-atlas/pkg/services/analytics"
	"github.com/de-tools/billing-atlas/pkg/services/config"
	"github.com/de-tools/billing-atlas/pkg/services/ingest"
	"github.com/de-tools/billing-atlas/pkg/store/dataset"
)

const sampleCSV = `DateOfService,ClientChargesAgreedTotal,UnitsOfService,TimeWorkedInHours,ClientFirstName,ClientLastName,ProcedureCode
01/06/2025,250,2,2,Jane,Doe,90791
01/08/2025,250,2,2,John,Smith,90791
02/24/2025,400,16,4,Jane,Doe,97153
02/25/2025,200,8,2,Alex,Roe,97153
03/03/2025,100,4,1,Jane,Doe,97153
03/04/2025,300,12,3,Alex,Roe,97153
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zerolog.New(zerolog.NewTestWriter(t))
	cfg := Config{
		Addr: ":0",
		Dependencies: Dependencies{
			Analytics: analytics.NewController(config.Default()),
			Datasets:  dataset.NewStore(),
			Fetcher:   ingest.NewFetcher(nil),
			Logger:    logger,
		},
	}

	srv := httptest.NewServer(ConfigureRouter(cfg))
	t.Cleanup(srv.Close)
	return srv
}

func createDataset(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	resp, err := http.Post(srv.URL+"/api/v1/datasets", "text/csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created api.DatasetCreated
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 6, created.Records)
	assert.Equal(t, 3, created.Weeks)
	return created.ID
}

func TestWebAPI_DatasetLifecycle(t *testing.T) {
	srv := newTestServer(t)
	id := createDataset(t, srv)

	t.Run("weekly", func(t *testing.T) {
		var weeks []api.WeeklyAggregate
		getJSON(t, srv, "/api/v1/datasets/"+id+"/weekly", &weeks)

		require.Len(t, weeks, 3)
		assert.Equal(t, "2025-01-06", weeks[0].Week)
		assert.Equal(t, 500.0, weeks[0].AgreedRevenue)
		assert.Equal(t, "2025-03-03", weeks[2].Week)
		assert.Equal(t, 2, weeks[2].ClientCount)
	})

	t.Run("top clients", func(t *testing.T) {
		var top []api.ClientWeekStats
		getJSON(t, srv, "/api/v1/datasets/"+id+"/clients/top", &top)

		require.Len(t, top, 2)
		assert.Equal(t, "Alex Roe", top[0].Name)
		assert.Equal(t, 300.0, top[0].TotalRevenue)
	})

	t.Run("changes", func(t *testing.T) {
		var changes []api.ClientHoursChange
		getJSON(t, srv, "/api/v1/datasets/"+id+"/clients/changes", &changes)

		require.Len(t, changes, 2)
		assert.Equal(t, "Jane Doe", changes[0].Name)
		assert.Equal(t, -75.0, changes[0].PercentChange)
	})

	t.Run("funnel with explicit now", func(t *testing.T) {
		var report api.FunnelReport
		getJSON(t, srv, "/api/v1/datasets/"+id+"/funnel?now=2025-03-10", &report)

		assert.Equal(t, 1, report.ConvertedTotal)
		require.Len(t, report.Converted, 1)
		assert.Equal(t, "Jane Doe", report.Converted[0].Name)
		require.NotNil(t, report.Converted[0].DaysToConversion)
		assert.Equal(t, 49, *report.Converted[0].DaysToConversion)

		require.Len(t, report.AtRisk, 1)
		assert.Equal(t, "John Smith", report.AtRisk[0].Name)
		assert.Equal(t, 50.0, report.ConversionRate)
		require.Len(t, report.Cohorts, 5)
	})

	t.Run("dashboard", func(t *testing.T) {
		var dash api.Dashboard
		getJSON(t, srv, "/api/v1/datasets/"+id+"/dashboard?now=2025-03-10", &dash)

		assert.Equal(t, 6, dash.RecordCount)
		assert.Len(t, dash.Weeks, 3)
		assert.Len(t, dash.TopClients, 2)
		assert.Len(t, dash.Changes, 2)
		assert.Equal(t, 1, dash.Funnel.ConvertedTotal)
	})

	t.Run("funnel with bad now", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/datasets/" + id + "/funnel?now=March-10")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "invalid 'now' date format. Expected format: YYYY-MM-DD\n", string(body))
	})

	t.Run("override and notes reflected in funnel", func(t *testing.T) {
		putJSON(t, srv, "/api/v1/datasets/"+id+"/clients/John Smith/override",
			api.OverrideRequest{Reason: "insurance"}, http.StatusNoContent)
		putJSON(t, srv, "/api/v1/datasets/"+id+"/clients/John Smith/notes",
			api.NotesRequest{Notes: "denied twice"}, http.StatusNoContent)

		var report api.FunnelReport
		getJSON(t, srv, "/api/v1/datasets/"+id+"/funnel?now=2025-03-10", &report)

		require.Len(t, report.NotViable, 1)
		assert.Equal(t, "insurance", report.NotViable[0].OverrideReason)
		assert.Equal(t, "denied twice", report.NotViable[0].Notes)
		assert.Empty(t, report.AtRisk)
	})

	t.Run("invalid override reason", func(t *testing.T) {
		putJSON(t, srv, "/api/v1/datasets/"+id+"/clients/John Smith/override",
			api.OverrideRequest{Reason: "bogus"}, http.StatusBadRequest)
	})

	t.Run("export conversions", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/datasets/" + id + "/export/conversions")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "conversion-leads-")

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(body), "First Name,Last Name,"))
	})
}

func TestWebAPI_UnknownDataset(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/api/v1/datasets/missing/dashboard",
		"/api/v1/datasets/missing/weekly",
		"/api/v1/datasets/missing/clients/top",
		"/api/v1/datasets/missing/clients/changes",
		"/api/v1/datasets/missing/funnel",
		"/api/v1/datasets/missing/export/conversions",
	} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err, path)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestWebAPI_FetchDataset(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer origin.Close()

	srv := newTestServer(t)

	body, err := json.Marshal(api.FetchRequest{URL: origin.URL})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/v1/datasets/fetch", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created api.DatasetCreated
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, 6, created.Records)
}

func TestWebAPI_FetchDataset_BadURL(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(api.FetchRequest{URL: "not a url"})
	resp, err := http.Post(srv.URL+"/api/v1/datasets/fetch", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out interface{}) {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func putJSON(t *testing.T, srv *httptest.Server, path string, body interface{}, wantStatus int) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, srv.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, wantStatus, resp.StatusCode)
}
