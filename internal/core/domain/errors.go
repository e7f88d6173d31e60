package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidPath indicates a structural path could not be parsed.
	// Tree operations never return it; it is only used when parsing user input.
	ErrInvalidPath = errors.New("invalid path")

	// Session and storage errors.

	// ErrNoActiveSession indicates the authoring session has ended or was never started.
	ErrNoActiveSession = errors.New("no active session")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrDestinationNotFound indicates the destination document does not exist.
	ErrDestinationNotFound = errors.New("destination document not found")

	// Collaborator errors.

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrModelUnavailable indicates an embedding or language model could not be used.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrMarkdownUnavailable indicates no markdown tree provider is configured.
	ErrMarkdownUnavailable = errors.New("markdown provider unavailable")
)
