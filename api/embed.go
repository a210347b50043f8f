// Package api carries the published OpenAPI description of the service.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPI []byte
