package partition

import (
	"iter"
	"math/rand/v2"
)

// none marks an absent child index.
const none = -1

// maxPrealloc caps the arena capacity reserved up front.
const maxPrealloc = 1 << 16

// Node is one entry in the tree arena.
type Node struct {
	Rect  Rect
	Depth int
	Left  int // arena index of the left child, or -1
	Right int // arena index of the right child, or -1
}

// IsLeaf reports whether n has no children.
func (n Node) IsLeaf() bool { return n.Left == none && n.Right == none }

// Tree is a binary space partition stored as an arena of nodes. The root is
// always at index 0. A Tree is immutable once [Build] returns.
type Tree struct {
	nodes    []Node
	maxDepth int
	leaves   int
}

// Build partitions root into a tree whose leaves sit at depth maxDepth,
// except where a rectangle became too small to cut (see [Split]). A
// negative maxDepth is treated as 0. The same rng drives every split
// decision, so a seeded generator yields the same tree every time.
func Build(root Rect, maxDepth int, rng *rand.Rand, opts ...Option) *Tree {
	maxDepth = max(maxDepth, 0)
	o := newOptions(opts)

	capacity := maxPrealloc
	if maxDepth < 16 {
		capacity = 1<<(maxDepth+1) - 1
	}
	t := &Tree{
		nodes:    make([]Node, 0, capacity),
		maxDepth: maxDepth,
	}
	t.nodes = append(t.nodes, Node{Rect: root, Left: none, Right: none})

	// Depth-first with an explicit stack; right is pushed before left so the
	// arena order follows the leaf order.
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[i]
		if n.Depth >= maxDepth {
			t.leaves++
			continue
		}
		left, right, ok := o.split(n.Rect, rng)
		if !ok {
			t.leaves++
			continue
		}

		li := len(t.nodes)
		t.nodes = append(t.nodes,
			Node{Rect: left, Depth: n.Depth + 1, Left: none, Right: none},
			Node{Rect: right, Depth: n.Depth + 1, Left: none, Right: none},
		)
		t.nodes[i].Left, t.nodes[i].Right = li, li+1
		stack = append(stack, li+1, li)
	}
	return t
}

// Root returns the root node.
func (t *Tree) Root() Node { return t.nodes[0] }

// Node returns the node at arena index i.
func (t *Tree) Node(i int) Node { return t.nodes[i] }

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

// LeafCount returns the number of leaves.
func (t *Tree) LeafCount() int { return t.leaves }

// MaxDepth returns the depth limit the tree was built with.
func (t *Tree) MaxDepth() int { return t.maxDepth }

// Depth returns the depth of the deepest leaf.
func (t *Tree) Depth() int {
	d := 0
	for _, n := range t.nodes {
		d = max(d, n.Depth)
	}
	return d
}

// Walk visits nodes in pre-order (parent, left subtree, right subtree),
// passing each node's arena index. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(i int, n Node) bool) {
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[i]
		if !fn(i, n) {
			return
		}
		if n.Right != none {
			stack = append(stack, n.Right)
		}
		if n.Left != none {
			stack = append(stack, n.Left)
		}
	}
}

// Leaves returns the leaf rectangles, left subtree before right subtree.
// The sequence is lazy and can be ranged over any number of times.
func (t *Tree) Leaves() iter.Seq[Rect] {
	return func(yield func(Rect) bool) {
		t.Walk(func(_ int, n Node) bool {
			if !n.IsLeaf() {
				return true
			}
			return yield(n.Rect)
		})
	}
}

// LeafSlice collects [Tree.Leaves] into a slice.
func (t *Tree) LeafSlice() []Rect {
	out := make([]Rect, 0, t.leaves)
	for r := range t.Leaves() {
		out = append(out, r)
	}
	return out
}
