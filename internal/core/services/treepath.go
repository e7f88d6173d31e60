package services

import "github.com/custodia-labs/docmerge/internal/core/domain"

// Tree edits never mutate their input and never fail: a path that does not
// resolve leaves the returned copy unchanged. Results carry stale path
// stamps until passed through WithPathsAssigned.

// WithPathsAssigned returns a copy of tree with every node stamped with its path.
func WithPathsAssigned(tree *domain.Node) *domain.Node {
	out := tree.Clone()
	if out != nil {
		stampPaths(out, domain.Path{})
	}
	return out
}

func stampPaths(n *domain.Node, p domain.Path) {
	n.SetPath(p)
	for i, child := range n.Children {
		if child != nil {
			stampPaths(child, p.Child(i))
		}
	}
}

// WithNodeDeleted returns a copy of tree without the node at path.
// Deleting the root is a no-op.
func WithNodeDeleted(tree *domain.Node, path domain.Path) *domain.Node {
	out, _ := deleteNode(tree, path)
	return out
}

// WithNodeMoved returns a copy of tree with the node at src re-inserted at dst.
// dst is resolved against the tree after the source has been removed. When both
// paths share a parent and src precedes dst, dst may name the slot one past the
// end (the "after sibling" index taken before removal); it is clamped to the end.
func WithNodeMoved(tree *domain.Node, src, dst domain.Path) *domain.Node {
	out, _ := moveNode(tree, src, dst)
	return out
}

// WithNodeInserted returns a copy of tree with node inserted at path.
// The index may equal the parent's child count to append.
func WithNodeInserted(tree *domain.Node, path domain.Path, node *domain.Node) *domain.Node {
	out, _ := insertNode(tree, path, node)
	return out
}

// The helpers below back the exported edits. Their bool reports whether the
// paths resolved and the edit was applied.

func deleteNode(tree *domain.Node, path domain.Path) (*domain.Node, bool) {
	out := tree.Clone()
	parent, idx, ok := locate(out, path)
	if !ok {
		return out, false
	}
	parent.Children = removeChild(parent.Children, idx)
	return out, true
}

func moveNode(tree *domain.Node, src, dst domain.Path) (*domain.Node, bool) {
	out := tree.Clone()
	srcParent, srcIdx, ok := locate(out, src)
	if !ok {
		return out, false
	}
	dstParentPath, _ := dst.Parent()
	dstIdx, hasIdx := dst.Last()
	if !hasIdx {
		return out, false
	}

	moved := srcParent.Children[srcIdx]
	srcParent.Children = removeChild(srcParent.Children, srcIdx)

	dstParent := out.At(dstParentPath)
	if dstParent == nil || dstParent.Type.IsLiteral() {
		return tree.Clone(), false
	}
	size := len(dstParent.Children)
	srcParentPath, _ := src.Parent()
	if dstIdx == size+1 && srcIdx < dstIdx && srcParentPath.Equal(dstParentPath) {
		dstIdx = size
	}
	if dstIdx < 0 || dstIdx > size {
		return tree.Clone(), false
	}
	dstParent.Children = insertChild(dstParent.Children, dstIdx, moved)
	return out, true
}

func insertNode(tree *domain.Node, path domain.Path, node *domain.Node) (*domain.Node, bool) {
	out := tree.Clone()
	if out == nil || node == nil {
		return out, false
	}
	parentPath, ok := path.Parent()
	if !ok {
		return out, false
	}
	idx, _ := path.Last()
	parent := out.At(parentPath)
	if parent == nil || parent.Type.IsLiteral() || idx < 0 || idx > len(parent.Children) {
		return out, false
	}
	parent.Children = insertChild(parent.Children, idx, node.Clone())
	return out, true
}

// locate resolves path to its parent and final index.
func locate(root *domain.Node, path domain.Path) (*domain.Node, int, bool) {
	if root == nil {
		return nil, 0, false
	}
	parentPath, ok := path.Parent()
	if !ok {
		return nil, 0, false
	}
	idx, _ := path.Last()
	parent := root.At(parentPath)
	if parent == nil || idx < 0 || idx >= len(parent.Children) {
		return nil, 0, false
	}
	return parent, idx, true
}

func removeChild(children []*domain.Node, idx int) []*domain.Node {
	out := make([]*domain.Node, 0, len(children)-1)
	out = append(out, children[:idx]...)
	return append(out, children[idx+1:]...)
}

func insertChild(children []*domain.Node, idx int, node *domain.Node) []*domain.Node {
	out := make([]*domain.Node, 0, len(children)+1)
	out = append(out, children[:idx]...)
	out = append(out, node)
	return append(out, children[idx:]...)
}
