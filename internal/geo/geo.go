package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pethotel/internal/config"
	"pethotel/internal/logging"

	"github.com/rs/zerolog"
)

const defaultTimeout = 5 * time.Second

// Client resolves coordinates to a locality name through a Nominatim-style
// reverse-geocoding endpoint.
type Client struct {
	baseURL   string
	userAgent string
	enabled   bool
	http      *http.Client
	logger    *zerolog.Logger
}

func NewClient(cfg config.GeoConfig, logger *zerolog.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   cfg.ReverseURL,
		userAgent: cfg.UserAgent,
		enabled:   cfg.Enabled && cfg.ReverseURL != "",
		http:      &http.Client{Timeout: timeout},
		logger:    logging.Component(logger, "geo"),
	}
}

type reverseResponse struct {
	Address struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
	} `json:"address"`
}

func (r reverseResponse) locality() string {
	for _, v := range []string{r.Address.City, r.Address.Town, r.Address.Village, r.Address.Municipality} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Locality returns the locality at lat/lon. Lookup failures are logged and
// yield "".
func (c *Client) Locality(ctx context.Context, lat, lon float64) string {
	if c == nil || !c.enabled {
		return ""
	}
	name, err := c.lookup(ctx, lat, lon)
	if err != nil {
		c.logger.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("Reverse geocoding failed")
		return ""
	}
	return name
}

func (c *Client) lookup(ctx context.Context, lat, lon float64) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid reverse url: %w", err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	if q.Get("format") == "" {
		q.Set("format", "json")
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return body.locality(), nil
}
