// Package partition splits a canvas into a binary tree of rectangles.
//
// # Overview
//
// A [Tree] is built once from a root [Rect] by repeatedly cutting each
// rectangle into two children that tile it exactly. Only the leaves of the
// tree carry meaning for rendering; internal nodes just record how the
// canvas was divided.
//
// # Split Policy
//
// For every node the axis is chosen by [ChooseAxis]:
//
//   - width/height > 2 (integer division): [Horizontal], children side by side
//   - height/width > 2: [Vertical], children stacked
//   - otherwise: either axis with equal probability
//
// The cut position is floor(extent * ratio) with ratio drawn uniformly from
// [0.4, 0.6]. A node whose extent along the chosen axis is below
// [MinSplitExtent] is tried on the other axis; if that is too small as well
// the node stays a leaf even though maxDepth has not been reached. This is
// the only case where a tree has fewer than 2^maxDepth leaves.
//
// # Storage
//
// Nodes live in a flat arena and reference their children by index, so
// building and traversing never recurse:
//
//	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
//	tree := partition.Build(partition.Rect{Width: 4096, Height: 2160}, 5, rng)
//	for r := range tree.Leaves() {
//	    fmt.Println(r)
//	}
//
// [Tree.Leaves] is lazy and restartable: every call walks the arena again in
// the same left-before-right order.
package partition
