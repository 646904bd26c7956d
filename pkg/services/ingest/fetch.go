package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/de-tools/billing-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

const (
	defaultFetchTimeout = 30 * time.Second
	maxFetchBytes       = 64 << 20
)

// Fetcher downloads a published billing sheet (e.g. a Google Sheets CSV
// export URL) and runs it through the CSV normalizer.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. A nil client gets a default with a timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Fetcher{client: client}
}

// FetchCSV retrieves the CSV document at url and parses it into session
// records. A non-2xx response or an unreadable body is an error; individual
// malformed rows inside a readable body are still dropped silently.
func (f *Fetcher) FetchCSV(ctx context.Context, url string) ([]domain.SessionRecord, error) {
	logger := zerolog.Ctx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch csv: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("read csv body: %w", err)
	}

	records := ParseCSV(string(body))
	logger.Debug().
		Str("url", url).
		Int("bytes", len(body)).
		Int("records", len(records)).
		Msg("fetched billing sheet")

	return records, nil
}
