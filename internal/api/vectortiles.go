package api

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/geoplat/tileagg/internal/service"
)

// contentTypeMVT is the IANA-registered MIME type for Mapbox Vector Tiles.
const contentTypeMVT = "application/vnd.mapbox-vector-tile"

// VectorTileInput addresses one tile by table and z/x/y, the same
// coordinate scheme a TileJSON "tiles" URL template expands to.
type VectorTileInput struct {
	Table string `path:"table" doc:"Source table name"`
	Z     uint8  `path:"z" doc:"Zoom level"`
	X     uint32 `path:"x" doc:"Tile column"`
	Y     uint32 `path:"y" doc:"Tile row"`
}

// VectorTileOutput carries a gzip-compressed MVT tile body, or a 204 with
// no body when the tile has no features.
type VectorTileOutput struct {
	ContentType     string `header:"Content-Type"`
	ContentEncoding string `header:"Content-Encoding"`
	Status          int
	Body            []byte
}

// TableInput names a source table for the metadata endpoint.
type TableInput struct {
	Table string `path:"table" doc:"Source table name"`
}

// VectorLayer describes one TileJSON vector_layers entry.
type VectorLayer struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	MinZoom     int    `json:"minzoom,omitempty"`
	MaxZoom     int    `json:"maxzoom,omitempty"`
}

// TileJSONBody is a minimal TileJSON 3.0.0 document for one table.
type TileJSONBody struct {
	TileJSON     string        `json:"tilejson"`
	Name         string        `json:"name"`
	Scheme       string        `json:"scheme"`
	Tiles        []string      `json:"tiles"`
	MinZoom      int           `json:"minzoom"`
	MaxZoom      int           `json:"maxzoom"`
	VectorLayers []VectorLayer `json:"vector_layers"`
}

// VectorTileHandler serves on-demand MVT tiles aggregated from a DuckDB
// table by mvtagg. Methods named Register* are auto-discovered by
// huma.AutoRegister.
type VectorTileHandler struct {
	svc *service.VectorTileService
}

func NewVectorTileHandler(svc *service.VectorTileService) *VectorTileHandler {
	return &VectorTileHandler{svc: svc}
}

// RegisterVectorTiles registers the tile and TileJSON routes.
func (h *VectorTileHandler) RegisterVectorTiles(api huma.API) {
	huma.Get(api, "/api/v1/vtiles/{table}/{z}/{x}/{y}.mvt", h.GetTile, huma.OperationTags("vtiles"))
	huma.Get(api, "/api/v1/vtiles/{table}", h.GetTileJSON, huma.OperationTags("vtiles"))
}

// GetTile aggregates and returns one tile.
func (h *VectorTileHandler) GetTile(ctx context.Context, input *VectorTileInput) (*VectorTileOutput, error) {
	if h.svc == nil {
		return nil, huma.Error503ServiceUnavailable("database not available")
	}

	tile, err := h.svc.Tile(ctx, input.Table, input.Z, input.X, input.Y)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if len(tile) == 0 {
		return &VectorTileOutput{Status: 204}, nil
	}

	return &VectorTileOutput{
		ContentType:     contentTypeMVT,
		ContentEncoding: "gzip",
		Status:          200,
		Body:            tile,
	}, nil
}

// GetTileJSON returns TileJSON metadata pointing at the tile endpoint.
func (h *VectorTileHandler) GetTileJSON(ctx context.Context, input *TableInput) (*struct{ Body TileJSONBody }, error) {
	if h.svc == nil {
		return nil, huma.Error503ServiceUnavailable("database not available")
	}

	body := TileJSONBody{
		TileJSON: "3.0.0",
		Name:     input.Table,
		Scheme:   "xyz",
		Tiles:    []string{fmt.Sprintf("/api/v1/vtiles/%s/{z}/{x}/{y}.mvt", input.Table)},
		MinZoom:  0,
		MaxZoom:  22,
		VectorLayers: []VectorLayer{
			{ID: input.Table, MinZoom: 0, MaxZoom: 22},
		},
	}
	return &struct{ Body TileJSONBody }{Body: body}, nil
}
