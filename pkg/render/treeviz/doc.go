// Package treeviz draws a partition tree as a Graphviz diagram.
//
// Every node of the binary space partition becomes a box labelled with its
// rectangle; internal nodes also name their split axis, and leaves are
// filled with the color they were painted in. This is a debugging and
// teaching aid: it shows how a composition was carved up.
//
//	dot := treeviz.ToDOT(comp.Tree, comp.Fills, treeviz.Options{Detailed: true})
//	svg, err := treeviz.RenderSVG(ctx, dot)
//
// Rendering uses [github.com/goccy/go-graphviz] in-process; no Graphviz
// installation is needed.
package treeviz
