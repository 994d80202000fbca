package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"
)

// Geocoder resolves a city/country pair to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, city, country string) (*GeoPoint, error)
}

// GeoPoint is a resolved coordinate pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeocodeClient calls the geocoder worker over HTTP.
type GeocodeClient struct {
	client  *http.Client
	baseURL string
}

// NewGeocodeClient builds a geocoder client, auto-configuring an ID token
// client when the worker requires authenticated invocations.
func NewGeocodeClient(client *http.Client, baseURL string) *GeocodeClient {
	if baseURL == "" {
		panic("geocoder baseURL must not be empty")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: 10 * time.Second}
		} else {
			client = idc
		}
	}
	return &GeocodeClient{client: client, baseURL: baseURL}
}

// Geocode posts the lookup to the worker and returns the coordinates.
func (c *GeocodeClient) Geocode(ctx context.Context, city, country string) (*GeoPoint, error) {
	payload := map[string]string{"city": city, "country": country}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal geocode payload: %w", err)
	}

	url := c.baseURL + "/geocode"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("geocoder error: %s", extractUpstreamError(resp.Body))
	}

	var geocodeResp struct {
		Data  *GeoPoint `json:"data"`
		Error string    `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&geocodeResp); err != nil && err != io.EOF {
		return nil, fmt.Errorf("could not decode geocoder response: %w", err)
	}
	if geocodeResp.Error != "" {
		return nil, fmt.Errorf("geocoder error: %s", geocodeResp.Error)
	}
	if geocodeResp.Data == nil {
		return nil, fmt.Errorf("geocoder returned no result")
	}
	return geocodeResp.Data, nil
}

func extractUpstreamError(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "unknown upstream error"
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

var _ Geocoder = (*GeocodeClient)(nil)
