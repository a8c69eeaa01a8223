package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes auto-discovers every handler's Register* methods (the
// convention APIHandler/DBHandler/InfoHandler/VectorTileHandler all follow)
// and wires them against api.
func RegisterRoutes(hapi huma.API, svc *Services) {
	huma.AutoRegister(hapi, NewAPIHandler(svc))

	if svc.DB != nil {
		huma.AutoRegister(hapi, NewDBHandler(svc.DB))
	}
	huma.AutoRegister(hapi, NewInfoHandler(svc.DataDir, svc.DB != nil))

	if svc.VectorTile != nil {
		huma.AutoRegister(hapi, NewVectorTileHandler(svc.VectorTile))
	}
}
