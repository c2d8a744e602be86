// Package player implements the course player: document-order navigation
// over a module/content tree and the player read model.
package player

import "mentorx/internal/domain/models/course"

// Position addresses a leaf inside a tree.
type Position struct {
	Module int
	Leaf   int
}

// Locate finds the module and index of a leaf by linear scan.
func Locate(tree *course.Tree, leafID string) (Position, bool) {
	if tree == nil || leafID == "" {
		return Position{}, false
	}
	for mi := range tree.Modules {
		for li := range tree.Modules[mi].Children {
			if tree.Modules[mi].Children[li].ID == leafID {
				return Position{Module: mi, Leaf: li}, true
			}
		}
	}
	return Position{}, false
}

// Next returns the leaf after leafID in document order. The successor is
// the next leaf of the same module, or else the first leaf of the nearest
// following module that has any. Returns nil at the end of the tree and
// for an unknown leafID.
func Next(tree *course.Tree, leafID string) *course.Leaf {
	pos, ok := Locate(tree, leafID)
	if !ok {
		return nil
	}

	children := tree.Modules[pos.Module].Children
	if pos.Leaf+1 < len(children) {
		return &children[pos.Leaf+1]
	}

	for mi := pos.Module + 1; mi < len(tree.Modules); mi++ {
		if c := tree.Modules[mi].Children; len(c) > 0 {
			return &c[0]
		}
	}
	return nil
}

// Previous mirrors Next: the preceding leaf of the same module, or else the
// last leaf of the nearest preceding non-empty module.
func Previous(tree *course.Tree, leafID string) *course.Leaf {
	pos, ok := Locate(tree, leafID)
	if !ok {
		return nil
	}

	children := tree.Modules[pos.Module].Children
	if pos.Leaf > 0 {
		return &children[pos.Leaf-1]
	}

	for mi := pos.Module - 1; mi >= 0; mi-- {
		if c := tree.Modules[mi].Children; len(c) > 0 {
			return &c[len(c)-1]
		}
	}
	return nil
}

// First returns the first leaf of the tree, or nil if it has none.
func First(tree *course.Tree) *course.Leaf {
	if tree == nil {
		return nil
	}
	for mi := range tree.Modules {
		if c := tree.Modules[mi].Children; len(c) > 0 {
			return &c[0]
		}
	}
	return nil
}

// Leaves flattens the tree in document order.
func Leaves(tree *course.Tree) []*course.Leaf {
	out := make([]*course.Leaf, 0, tree.LeafCount())
	if tree == nil {
		return out
	}
	for mi := range tree.Modules {
		for li := range tree.Modules[mi].Children {
			out = append(out, &tree.Modules[mi].Children[li])
		}
	}
	return out
}
