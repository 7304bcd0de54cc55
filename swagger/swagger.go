// Package swagger embeds the OpenAPI document of the HTTP API.
package swagger

import (
	"embed"
	"net/http"
)

//go:embed openapi.yaml
var content embed.FS

// GetHandler serves openapi.yaml from the embedded filesystem.
func GetHandler() http.Handler {
	return http.FileServer(http.FS(content))
}
