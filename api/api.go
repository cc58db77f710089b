// Package api embeds the OpenAPI document of the local calendar service.
// The handler package serves it at /openapi.yaml.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPI []byte
