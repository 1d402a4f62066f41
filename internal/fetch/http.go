package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rotisserie/eris"

	"github.com/adit301104/DrData/internal/config"
)

const maxBodyBytes = 8 << 20

type HTTPFetcher struct {
	httpClient *http.Client
	faker      *gofakeit.Faker
}

// NewHTTPFetcher builds a plain HTTP fetcher. A nil faker gets a randomly seeded one.
func NewHTTPFetcher(cfg config.Config, faker *gofakeit.Faker) *HTTPFetcher {
	if faker == nil {
		faker = gofakeit.New(0)
	}
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: time.Duration(cfg.FetchTimeoutMs) * time.Millisecond},
		faker:      faker,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", eris.Wrapf(err, "build request %s", url)
	}
	req.Header.Set("User-Agent", f.faker.UserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", eris.Wrapf(err, "read body %s", url)
	}
	return string(body), nil
}
