package nominatim

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"map-catalog-service/internal/config"
	"map-catalog-service/internal/core/domain"
	ports "map-catalog-service/internal/core/ports/output"
)

type nominatimClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewNominatimClient creates a geocoder backed by a Nominatim-compatible
// search API.
func NewNominatimClient(cfg *config.SuggestConfig) ports.GeocoderClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &nominatimClient{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Nominatim search result, format=json
type place struct {
	PlaceID     int64             `json:"place_id"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Class       string            `json:"class"`
	Type        string            `json:"type"`
	AddressType string            `json:"addresstype"`
	Importance  float64           `json:"importance"`
	BoundingBox []string          `json:"boundingbox"`
	NameDetails map[string]string `json:"namedetails"`
}

func (c *nominatimClient) Search(ctx context.Context, text, locale string, limit int) ([]domain.Suggestion, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", text)
	if locale != "" {
		params.Set("accept-language", locale)
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("namedetails", "1")

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: nominatim search: %w", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: nominatim returned %d: %s", domain.ErrStoreUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}

	out := make([]domain.Suggestion, 0, len(places))
	for _, p := range places {
		name := p.Name
		if local, ok := p.NameDetails["name:"+locale]; ok && local != "" {
			name = local
		}
		out = append(out, domain.Suggestion{
			PlaceID:     strconv.FormatInt(p.PlaceID, 10),
			Name:        name,
			DisplayName: p.DisplayName,
			Lat:         p.Lat,
			Lon:         p.Lon,
			Class:       p.Class,
			Type:        p.Type,
			AddressType: p.AddressType,
			Importance:  p.Importance,
			BoundingBox: p.BoundingBox,
		})
	}
	return out, nil
}
