package driving

import (
	"context"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// AssemblyService builds destination documents from reviewed content.
type AssemblyService interface {
	// CreateDestination starts an empty, unsaved destination document.
	CreateDestination(ctx context.Context, uri, title string) (*domain.DestinationDocument, error)

	// GetDestination retrieves a destination document.
	GetDestination(ctx context.Context, uri string) (*domain.DestinationDocument, error)

	// ListDestinations returns every destination in the session.
	ListDestinations(ctx context.Context) ([]domain.DestinationDocument, error)

	// RemoveDestination discards a destination document.
	RemoveDestination(ctx context.Context, uri string) error

	// Outline returns the destination's content units grouped under headings.
	Outline(ctx context.Context, uri string) ([]domain.OutlineEntry, error)

	// InsertBlock parses markdown and inserts its blocks at path.
	InsertBlock(ctx context.Context, uri string, at domain.Path, markdown string) (*domain.DestinationDocument, error)

	// InsertSection inserts an indexed section at path and marks it resolved.
	InsertSection(ctx context.Context, uri string, at domain.Path, sectionID string) (*domain.DestinationDocument, error)

	// MergeGroup inserts the kept member of a group at path and resolves every member.
	// groupID is required; an empty keepID keeps the first listed member.
	MergeGroup(ctx context.Context, uri string, at domain.Path, groupID, keepID string) (*domain.DestinationDocument, error)

	// MoveBlock moves the node at from to to. Invalid paths leave the document unchanged.
	MoveBlock(ctx context.Context, uri string, from, to domain.Path) (*domain.DestinationDocument, error)

	// DeleteBlock removes the node at path. Invalid paths leave the document unchanged.
	DeleteBlock(ctx context.Context, uri string, at domain.Path) (*domain.DestinationDocument, error)

	// Publish serialises the destination and appends a glossary of canonical
	// terms that occur in the text.
	Publish(ctx context.Context, uri string) (string, error)

	// MarkMaterialized records that the destination has been written to disk.
	MarkMaterialized(ctx context.Context, uri string) error

	// ComputeWithBlockDeleted returns tree with the node at path removed.
	ComputeWithBlockDeleted(tree *domain.Node, at domain.Path) *domain.Node

	// ComputeWithBlockMoved returns tree with the node at from moved to to.
	ComputeWithBlockMoved(tree *domain.Node, from, to domain.Path) *domain.Node

	// ComputeWithBlockInserted returns tree with node inserted at path.
	ComputeWithBlockInserted(tree *domain.Node, at domain.Path, node *domain.Node) *domain.Node

	// AddPathsToTree returns tree with every node stamped with its path.
	AddPathsToTree(tree *domain.Node) *domain.Node
}
