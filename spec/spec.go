// Package spec embeds the OpenAPI specification for the smart bin API.
// It is imported by the HTTP server to serve the spec at /openapi.yaml,
// keeping the document and the running code in the same binary.
package spec

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte
