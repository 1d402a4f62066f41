package fetch

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/adit301104/DrData/internal/config"
)

// Fetcher returns the HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// StatusError is returned when the upstream answers with anything but 200.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// New picks the fetcher for FETCH_MODE. The returned close func releases browser resources.
func New(cfg config.Config, logger *zap.Logger) (Fetcher, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.FetchMode)) {
	case "", "http":
		return NewHTTPFetcher(cfg, nil), func() {}, nil
	case "browser":
		b := NewBrowserFetcher(cfg, logger)
		return b, b.Close, nil
	default:
		return nil, nil, eris.Errorf("unsupported fetch mode: %s", cfg.FetchMode)
	}
}
