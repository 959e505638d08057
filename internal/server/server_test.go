package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/mondrian/pkg/cache"
	"github.com/matzehuels/mondrian/pkg/gallery"
	"github.com/matzehuels/mondrian/pkg/observability"
	"github.com/matzehuels/mondrian/pkg/pipeline"
)

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *gallery.MemoryStore) {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	store := gallery.NewMemoryStore()
	s := New(pipeline.NewRunner(fc, nil, logger), store, logger, opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestRenderPNG(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := get(t, ts.URL+"/api/render?width=64&height=48&levels=3&seed=7")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if seed := resp.Header.Get(SeedHeader); seed != "7" {
		t.Errorf("%s = %q, want 7", SeedHeader, seed)
	}
	if c := resp.Header.Get(CacheHeader); c != "miss" {
		t.Errorf("%s = %q, want miss", CacheHeader, c)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("image is %v, want 64x48", b)
	}
}

func TestRenderCachedOnRepeat(t *testing.T) {
	ts, _ := newTestServer(t)
	url := ts.URL + "/api/render?width=32&height=32&levels=2&seed=11&format=svg"

	first := get(t, url)
	a, _ := io.ReadAll(first.Body)
	second := get(t, url)
	b, _ := io.ReadAll(second.Body)

	if second.Header.Get(CacheHeader) != "hit" {
		t.Errorf("second request should hit the cache")
	}
	if !bytes.Equal(a, b) {
		t.Error("cached body differs from the original")
	}
}

func TestRenderRandomSeedReported(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := get(t, ts.URL+"/api/render?width=16&height=16&levels=1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if seed := resp.Header.Get(SeedHeader); seed == "" || seed == "0" {
		t.Errorf("%s = %q, want a drawn seed", SeedHeader, seed)
	}
}

func TestRenderRejectsBadRequests(t *testing.T) {
	ts, _ := newTestServer(t, WithLimits(Limits{MaxPixels: 10_000, MaxLevels: 6}))

	tests := []struct {
		name  string
		query string
	}{
		{"zero width", "width=0&height=10"},
		{"non-numeric", "width=abc"},
		{"too many pixels", "width=200&height=200"},
		{"too many levels", "width=10&height=10&levels=7"},
		{"unknown format", "width=10&height=10&format=gif"},
		{"bad color", "width=10&height=10&palette=chartreuse-ish"},
		{"weight count", "width=10&height=10&palette=red,blue&weights=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts.URL+"/api/render?"+tt.query)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			var body errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestGalleryLifecycle(t *testing.T) {
	ts, store := newTestServer(t)

	body := strings.NewReader(`{"width": 64, "height": 48, "levels": 2, "seed": "5"}`)
	resp, err := http.Post(ts.URL+"/api/compositions", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var created createResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	rec := created.Record
	if rec.Seed != 5 || rec.Leaves != 4 {
		t.Fatalf("record = %+v, want seed 5 and 4 leaves", rec)
	}
	if loc := resp.Header.Get("Location"); loc != "/api/gallery/"+rec.ID {
		t.Errorf("Location = %q", loc)
	}
	if _, err := store.Get(t.Context(), rec.ID); err != nil {
		t.Fatalf("record not stored: %v", err)
	}

	got := get(t, ts.URL+"/api/gallery/"+rec.ID)
	if got.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", got.StatusCode)
	}

	img := get(t, ts.URL+created.Image+"?format=svg")
	if img.StatusCode != http.StatusOK || img.Header.Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("image status = %d, type %q", img.StatusCode, img.Header.Get("Content-Type"))
	}
	if img.Header.Get(SeedHeader) != "5" {
		t.Errorf("replayed seed = %q", img.Header.Get(SeedHeader))
	}

	list := get(t, ts.URL+"/api/gallery/")
	var listed listResponse
	if err := json.NewDecoder(list.Body).Decode(&listed); err != nil {
		t.Fatal(err)
	}
	if len(listed.Records) != 1 || listed.Records[0].ID != rec.ID {
		t.Fatalf("list = %+v", listed.Records)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/gallery/"+rec.ID, nil)
	del, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", del.StatusCode)
	}

	if gone := get(t, ts.URL+"/api/gallery/"+rec.ID); gone.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", gone.StatusCode)
	}
}

func TestCreateRejectsUnknownFields(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/compositions", "application/json", strings.NewReader(`{"width": 10, "colour": "red"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateCustomPaletteWithoutWeights(t *testing.T) {
	ts, _ := newTestServer(t)
	body := strings.NewReader(`{"width": 20, "height": 20, "levels": 1, "palette": ["red", "blue"]}`)
	resp, err := http.Post(ts.URL+"/api/compositions", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
}

func TestRequestID(t *testing.T) {
	ts, _ := newTestServer(t)

	const id = "0b9d5f9c-3c2e-4d7a-9a55-0b6f0f4f6e11"
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("echoed id = %q, want %q", got, id)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got == "not-a-uuid" || got == "" {
		t.Errorf("invalid id should be replaced, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Cleanup(observability.Reset)
	reg := prometheus.NewRegistry()
	observability.NewPrometheus(reg).Register()

	ts, _ := newTestServer(t, WithMetrics(reg))
	get(t, ts.URL+"/api/render?width=16&height=16&levels=1&seed=3")

	resp := get(t, ts.URL+"/metrics")
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`mondrian_http_requests_total{method="GET",route="/api/render",status="200"} 1`,
		"mondrian_pipeline_compositions_total",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
