package player

import "mentorx/internal/domain/models/course"

// Cursor is the "current leaf" pointer of a player session. It always
// references a leaf of its tree, or nil when the tree is empty.
type Cursor struct {
	tree    *course.Tree
	current *course.Leaf
}

// NewCursor points at leafID, falling back to the first leaf when leafID
// is empty or not part of tree.
func NewCursor(tree *course.Tree, leafID string) *Cursor {
	c := &Cursor{tree: tree}
	if !c.Seek(leafID) {
		c.current = First(tree)
	}
	return c
}

// Current returns the current leaf, nil for an empty tree.
func (c *Cursor) Current() *course.Leaf {
	return c.current
}

// Seek moves to leafID if it exists in the tree. Unknown ids leave the
// cursor where it is.
func (c *Cursor) Seek(leafID string) bool {
	pos, ok := Locate(c.tree, leafID)
	if !ok {
		return false
	}
	c.current = &c.tree.Modules[pos.Module].Children[pos.Leaf]
	return true
}

// Advance moves to the next leaf. At the end of the tree it stays put and
// returns false.
func (c *Cursor) Advance() bool {
	if c.current == nil {
		return false
	}
	next := Next(c.tree, c.current.ID)
	if next == nil {
		return false
	}
	c.current = next
	return true
}

// Retreat moves to the previous leaf. At the start of the tree it stays
// put and returns false.
func (c *Cursor) Retreat() bool {
	if c.current == nil {
		return false
	}
	prev := Previous(c.tree, c.current.ID)
	if prev == nil {
		return false
	}
	c.current = prev
	return true
}
