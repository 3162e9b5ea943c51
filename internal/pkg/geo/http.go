package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// HTTPResolver queries an external ip-api.com compatible endpoint. The
// lookup is bounded by a short timeout and every failure mode (timeout,
// transport error, non-200 status, malformed body) collapses into the
// empty Location.
type HTTPResolver struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewHTTPResolver creates a resolver against the given endpoint, e.g.
// "http://ip-api.com/json". timeoutSeconds bounds every lookup.
func NewHTTPResolver(endpoint string, timeoutSeconds int, logger *slog.Logger) *HTTPResolver {
	return &HTTPResolver{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

func (r *HTTPResolver) Lookup(ctx context.Context, ip string) Location {
	if ip == "" {
		return Location{}
	}

	lookupURL := fmt.Sprintf("%s/%s?fields=country,city", r.endpoint, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		r.logger.Debug("Failed to build geo lookup request", slog.String("ip", ip), slog.Any("error", err))
		return Location{}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("Geo lookup failed", slog.String("ip", ip), slog.Any("error", err))
		return Location{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Debug("Geo lookup returned non-OK status",
			slog.String("ip", ip),
			slog.Int("status", resp.StatusCode))
		return Location{}
	}

	var body struct {
		Country string `json:"country"`
		City    string `json:"city"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		r.logger.Debug("Failed to decode geo lookup response", slog.String("ip", ip), slog.Any("error", err))
		return Location{}
	}

	return Location{Country: body.Country, City: body.City}
}
