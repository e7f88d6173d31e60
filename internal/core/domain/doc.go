// Package domain defines the core business entities for docmerge.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Node: A typed markdown tree node with a generic data bag
//   - ContentUnit: An atomic block extracted from a source document
//   - IndexItem: An embedded section or glossary term stored in the vector index
//   - SimilarityGroup / TermGroup: Near-duplicate clusters surfaced to the author
//   - DestinationDocument: The document being assembled
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
