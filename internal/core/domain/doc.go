// Package domain defines the core business entities for Lexica.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceDocument: An immutable document snapshot supplied by the host
//   - IndexEntry: A persisted row in the search index
//   - SearchQuery / SearchResult: Query input and ranked output
//   - QueryTelemetry: Append-only record of an executed query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
