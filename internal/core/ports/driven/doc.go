// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - MarkdownTree: Parses text into a typed node tree and serialises it back
//   - EmbeddingService: Turns text into fixed-length vectors
//   - VectorIndex: Stores embedded items and answers nearest-neighbour queries
//   - DestinationStore: Holds destination documents for the session
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - AIConfigValidator: Checks an embedding configuration before it is saved
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
