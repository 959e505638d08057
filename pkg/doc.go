// Package pkg provides the core libraries for Mondrian, a generator of
// random compositions in the style of Piet Mondrian.
//
// # Overview
//
// A composition is made in two steps. A binary space partition recursively
// splits the canvas into rectangles; then every leaf rectangle is filled with
// a palette color drawn by weight and outlined in black. One seeded generator
// drives both steps, so a configuration plus a seed always reproduces the
// same pixels.
//
// # Architecture
//
//	Config (TOML, flags, HTTP query)
//	         ↓
//	    [config] package (layering + validation)
//	         ↓
//	    [partition] package (split tree over the canvas)
//	         ↓
//	    [compose] package (palette sampling + painting)
//	         ↓
//	    [sink] package (PNG/JPEG/BMP/TIFF/SVG/JSON)
//
// [pipeline] ties the steps together behind an artifact [cache], and
// [gallery] records runs so they can be replayed by ID.
//
// # Quick Start
//
//	comp, err := compose.Compose(ctx, compose.Config{
//	    Width: 4096, Height: 2160, Levels: 5,
//	    Palette: palette.Default(),
//	    Seed: 42,
//	})
//	data, err := sink.Render(comp, sink.FormatPNG)
//	err = sink.Save("mondrian.png", data)
//
// # Main Packages
//
// ## Generation
//
// [partition] - Arena-backed binary partition tree. Each split picks a
// random orientation and a ratio drawn from [0.4, 0.6]; an extent under
// three pixels is never cut, so every piece keeps at least one pixel.
//
// [palette] - Colors with integer weights and a cumulative-weight sampler.
// Colors parse from hex or CSS names.
//
// [compose] - Builds the tree, assigns colors and paints interiors and
// borders, optionally in parallel.
//
// ## Output
//
// [sink] - Encoders for raster formats, an SVG writer and a JSON layout
// export, plus atomic file writes.
//
// [render/treeviz] - Graphviz diagrams of the partition tree.
//
// ## Infrastructure
//
// [config] - TOML configuration layered over built-in defaults.
//
// [pipeline] - validate → seed → cache lookup → compose → encode → cache
// store, shared by the CLI and the HTTP server.
//
// [cache] - Artifact cache backends: file, Redis and a no-op cache.
//
// [gallery] - Record stores: memory, file and MongoDB.
//
// [observability] - Hook interfaces with Prometheus implementations.
//
// [errors] - Coded errors and input validation.
//
// [partition]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/partition
// [palette]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/palette
// [compose]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/compose
// [sink]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/sink
// [render/treeviz]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/render/treeviz
// [config]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/config
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/cache
// [gallery]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/gallery
// [observability]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/errors
package pkg
