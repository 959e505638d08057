package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matzehuels/mondrian/pkg/cache"
	"github.com/matzehuels/mondrian/pkg/config"
	apperr "github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/observability"
	"github.com/matzehuels/mondrian/pkg/sink"
)

func smallConfig(seed uint64) config.Config {
	cfg := config.Default()
	cfg.Width, cfg.Height = 320, 200
	cfg.Levels = 4
	cfg.Seed = seed
	return cfg
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil)
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Config: smallConfig(1)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != sink.FormatPNG {
		t.Errorf("formats = %v, want [png]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("logger should default")
	}

	bad := Options{Config: smallConfig(1), Formats: []sink.Format{"gif"}}
	if err := bad.ValidateAndSetDefaults(); !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Config:  smallConfig(7),
		Formats: []sink.Format{sink.FormatPNG, sink.FormatSVG, sink.FormatJSON},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit || res.Composition == nil {
		t.Fatal("first run should compose")
	}
	if res.Seed != 7 || res.Stats.Leaves != 16 {
		t.Errorf("seed=%d leaves=%d, want 7 and 16", res.Seed, res.Stats.Leaves)
	}
	for _, f := range []sink.Format{sink.FormatPNG, sink.FormatSVG, sink.FormatJSON} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
}

func TestExecuteInvalidConfig(t *testing.T) {
	cfg := smallConfig(1)
	cfg.Levels = 99
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{Config: cfg})
	if !apperr.Is(err, apperr.ErrCodeInvalidLevels) {
		t.Errorf("error = %v, want INVALID_LEVELS", err)
	}
}

func TestExecuteCachesFixedSeed(t *testing.T) {
	r := newFileRunner(t)
	ctx := context.Background()
	opts := Options{Config: smallConfig(99), Formats: []sink.Format{sink.FormatPNG}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit || !second.CacheHit {
		t.Fatalf("cache hits = %v, %v; want false, true", first.CacheHit, second.CacheHit)
	}
	if !bytes.Equal(first.Artifacts[sink.FormatPNG], second.Artifacts[sink.FormatPNG]) {
		t.Error("cached artifact differs")
	}
	if second.Stats.Leaves != first.Stats.Leaves || second.Stats.Border != first.Stats.Border {
		t.Errorf("cached stats = %+v, want %+v", second.Stats, first.Stats)
	}

	opts.NoCache = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("NoCache should bypass the cache")
	}
}

func TestExecuteRandomSeedNotCached(t *testing.T) {
	r := newFileRunner(t)
	ctx := context.Background()
	opts := Options{Config: smallConfig(0)}

	a, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if a.CacheHit || b.CacheHit {
		t.Error("random-seed runs must not be cached")
	}
	if a.Seed == 0 || b.Seed == 0 {
		t.Error("the drawn seed should be reported")
	}

	replay := Options{Config: smallConfig(a.Seed)}
	c, err := r.Execute(ctx, replay)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Artifacts[sink.FormatPNG], c.Artifacts[sink.FormatPNG]) {
		t.Error("replaying the reported seed should reproduce the image")
	}
}

func TestCompositionHash(t *testing.T) {
	a := smallConfig(1)
	b := smallConfig(1)
	b.Palette = []string{"white", "red", "#ff0", "0000ff"}
	ha, err := CompositionHash(a, 1)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := CompositionHash(b, 1)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Error("equivalent palettes should hash equally")
	}

	b.Split = config.Split{}
	if hz, _ := CompositionHash(b, 1); hz != ha {
		t.Error("unset split should hash like the defaults")
	}
	if h2, _ := CompositionHash(a, 2); h2 == ha {
		t.Error("seed must be part of the hash")
	}
	c := smallConfig(1)
	c.Output = "elsewhere.png"
	c.Workers = 8
	if hc, _ := CompositionHash(c, 1); hc != ha {
		t.Error("output path and workers do not change the pixels")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Config: smallConfig(1)}
	opts.Config.Scale = 0.5
	if got := opts.ArtifactKeyOpts(sink.FormatJSON); got.Scale != 0 {
		t.Error("json ignores scale")
	}
	if got := opts.ArtifactKeyOpts(sink.FormatPNG); got.Scale != 0.5 || got.Quality != 0 {
		t.Errorf("png key opts = %+v", got)
	}
	if got := opts.ArtifactKeyOpts(sink.FormatJPEG); got.Quality != opts.Config.Quality {
		t.Errorf("jpeg key opts = %+v", got)
	}
}

type failingCache struct{ cache.NullCache }

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}

func TestExecuteCacheErrorsAreNotFatal(t *testing.T) {
	r := NewRunner(failingCache{}, nil, nil)
	res, err := r.Execute(context.Background(), Options{Config: smallConfig(3)})
	if err != nil {
		t.Fatalf("cache failure should not fail the run: %v", err)
	}
	if len(res.Artifacts[sink.FormatPNG]) == 0 {
		t.Error("artifact missing")
	}
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil, nil, nil).Execute(ctx, Options{Config: smallConfig(3)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks
	composed, encoded int
}

func (h *countingHooks) OnComposeComplete(context.Context, int, time.Duration, error) {
	h.composed++
}

func (h *countingHooks) OnEncodeComplete(context.Context, string, int, time.Duration, error) {
	h.encoded++
}

func TestExecuteEmitsHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Config:  smallConfig(5),
		Formats: []sink.Format{sink.FormatPNG, sink.FormatJSON},
	})
	if err != nil {
		t.Fatal(err)
	}
	if hooks.composed != 1 || hooks.encoded != 2 {
		t.Errorf("hooks composed=%d encoded=%d, want 1 and 2", hooks.composed, hooks.encoded)
	}
}
