// Package geoclient is a generated Go client SDK for the plat-geo API.
//
// Regenerate with: geo gen-client [-o pkg/geoclient]
package geoclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// PlatGeoAPIClient calls the plat-geo REST API over HTTP.
type PlatGeoAPIClient struct {
	baseURL string
	http    *http.Client
}

// New creates a client against baseURL (e.g. "http://localhost:8086").
func New(baseURL string) PlatGeoAPIClient {
	return PlatGeoAPIClient{baseURL: baseURL, http: http.DefaultClient}
}

func (c PlatGeoAPIClient) do(ctx context.Context, method, path string, reqBody, respBody any) (*http.Response, error) {
	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return resp, fmt.Errorf("geoclient: %s %s: %s: %s", method, path, resp.Status, string(data))
	}
	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil && err != io.EOF {
			return resp, err
		}
	}
	return resp, nil
}

// HealthBody is the /health response.
type HealthBody struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health checks server liveness.
func (c PlatGeoAPIClient) Health(ctx context.Context) (*http.Response, HealthBody, error) {
	var body HealthBody
	resp, err := c.do(ctx, http.MethodGet, "/health", nil, &body)
	return resp, body, err
}

// InfoBody is the /api/v1/info response.
type InfoBody struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	DataDir  string   `json:"data_dir"`
	DB       bool     `json:"db"`
	Features []string `json:"features"`
}

// GetInfo fetches server info.
func (c PlatGeoAPIClient) GetInfo(ctx context.Context) (*http.Response, InfoBody, error) {
	var body InfoBody
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/info", nil, &body)
	return resp, body, err
}

// Page is a generic paginated response envelope.
type Page[T any] struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Data   []T `json:"data"`
}

// SourceFile describes one uploaded source file.
type SourceFile struct {
	Name     string `json:"name"`
	Size     string `json:"size"`
	FileType string `json:"fileType"`
}

// ListSources lists uploaded source files.
func (c PlatGeoAPIClient) ListSources(ctx context.Context) (*http.Response, Page[SourceFile], error) {
	var body Page[SourceFile]
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/sources", nil, &body)
	return resp, body, err
}

// TileFile describes one generated PMTiles file.
type TileFile struct {
	Name string `json:"name"`
	Size string `json:"size"`
}

// ListTiles lists generated tile files.
func (c PlatGeoAPIClient) ListTiles(ctx context.Context) (*http.Response, Page[TileFile], error) {
	var body Page[TileFile]
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/tiles", nil, &body)
	return resp, body, err
}

// RenderRule mirrors a layer's conditional styling rule.
type RenderRule struct {
	FilterProp  string  `json:"filterProp,omitempty"`
	FilterValue string  `json:"filterValue,omitempty"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
}

// LegendItem mirrors a layer's legend entry.
type LegendItem struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// LayerConfig mirrors internal/service.LayerConfig.
type LayerConfig struct {
	ID             string       `json:"id,omitempty"`
	Name           string       `json:"name"`
	File           string       `json:"file"`
	PMTilesLayer   string       `json:"pmtilesLayer,omitempty"`
	GeomType       string       `json:"geomType"`
	DefaultVisible bool         `json:"defaultVisible"`
	Fill           string       `json:"fill,omitempty"`
	Stroke         string       `json:"stroke,omitempty"`
	Opacity        float64      `json:"opacity,omitempty"`
	RenderRules    []RenderRule `json:"renderRules,omitempty"`
	Legend         []LegendItem `json:"legend,omitempty"`
}

// ListLayers lists all configured layers, keyed by ID.
func (c PlatGeoAPIClient) ListLayers(ctx context.Context) (*http.Response, map[string]LayerConfig, error) {
	var body map[string]LayerConfig
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/layers", nil, &body)
	return resp, body, err
}

// CreatedLayerBody is the response from creating or duplicating a layer.
type CreatedLayerBody struct {
	ID      string      `json:"id"`
	Layer   LayerConfig `json:"layer"`
	Message string      `json:"message"`
}

// CreateLayer creates a new layer.
func (c PlatGeoAPIClient) CreateLayer(ctx context.Context, layer LayerConfig) (*http.Response, CreatedLayerBody, error) {
	var body CreatedLayerBody
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/layers", layer, &body)
	return resp, body, err
}

// GetLayer fetches one layer by ID.
func (c PlatGeoAPIClient) GetLayer(ctx context.Context, id string) (*http.Response, LayerConfig, error) {
	var body LayerConfig
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/layers/"+id, nil, &body)
	return resp, body, err
}

// MessageBody is a plain confirmation response.
type MessageBody struct {
	Message string `json:"message"`
}

// DeleteLayer deletes a layer by ID.
func (c PlatGeoAPIClient) DeleteLayer(ctx context.Context, id string) (*http.Response, MessageBody, error) {
	var body MessageBody
	resp, err := c.do(ctx, http.MethodDelete, "/api/v1/layers/"+id, nil, &body)
	return resp, body, err
}

// QueryInputBody is the request body for an ad hoc SQL query.
type QueryInputBody struct {
	Query string `json:"query"`
}

// QueryOutputBody is the response from an ad hoc SQL query.
type QueryOutputBody struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
	Count   int                      `json:"count"`
}

// Query runs a read-only SQL query against the DuckDB database.
func (c PlatGeoAPIClient) Query(ctx context.Context, in QueryInputBody) (*http.Response, QueryOutputBody, error) {
	var body QueryOutputBody
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/query", in, &body)
	return resp, body, err
}

// TablesBody lists available DuckDB table names.
type TablesBody struct {
	Tables []string `json:"tables"`
}

// ListTables lists DuckDB tables.
func (c PlatGeoAPIClient) ListTables(ctx context.Context) (*http.Response, TablesBody, error) {
	var body TablesBody
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/tables", nil, &body)
	return resp, body, err
}
