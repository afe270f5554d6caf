package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"huduku-gateway/internal/model"
)

// GeoClient talks to the region service. The hierarchy only supports
// slug lookup at the state level; every deeper level is listed by parent
// code and scanned by the caller.
type GeoClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGeoClient creates a geography facade with a fixed per-call timeout.
func NewGeoClient(baseURL string, timeout time.Duration) *GeoClient {
	return &GeoClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// States lists states, optionally filtered by slug. A slug filter returns at
// most one element since slugs are unique.
func (c *GeoClient) States(ctx context.Context, slug string) ([]model.Area, error) {
	u := c.baseURL + "/states"
	if slug != "" {
		u += "?" + url.Values{"slug": {slug}}.Encode()
	}

	var states []model.Area
	if err := doJSON(ctx, c.httpClient, "geo", http.MethodGet, u, nil, nil, &states); err != nil {
		return nil, err
	}
	return states, nil
}

// Districts lists all districts of a state.
func (c *GeoClient) Districts(ctx context.Context, stateCode int64) ([]model.Area, error) {
	u := fmt.Sprintf("%s/states/%d/districts", c.baseURL, stateCode)

	var districts []model.Area
	if err := doJSON(ctx, c.httpClient, "geo", http.MethodGet, u, nil, nil, &districts); err != nil {
		return nil, err
	}
	return districts, nil
}

// Cities lists all cities of a district.
func (c *GeoClient) Cities(ctx context.Context, stateCode, districtCode int64) ([]model.Area, error) {
	u := fmt.Sprintf("%s/states/%d/districts/%d/cities", c.baseURL, stateCode, districtCode)

	var cities []model.Area
	if err := doJSON(ctx, c.httpClient, "geo", http.MethodGet, u, nil, nil, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

// Localities lists all localities of a city.
func (c *GeoClient) Localities(ctx context.Context, stateCode, districtCode, cityCode int64) ([]model.Area, error) {
	u := fmt.Sprintf("%s/states/%d/districts/%d/cities/%d/locality", c.baseURL, stateCode, districtCode, cityCode)

	var localities []model.Area
	if err := doJSON(ctx, c.httpClient, "geo", http.MethodGet, u, nil, nil, &localities); err != nil {
		return nil, err
	}
	return localities, nil
}
