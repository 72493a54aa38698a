// Package openapi derives form definitions from OpenAPI operations. The
// loader and parser contracts live here; kin-openapi backed implementations
// live under internal/openapi and are constructed through the root package.
package openapi
