package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mondrian/internal/server"
	"github.com/matzehuels/mondrian/pkg/cache"
	apperr "github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/gallery"
	"github.com/matzehuels/mondrian/pkg/observability"
	"github.com/matzehuels/mondrian/pkg/pipeline"
)

// Gallery backends accepted by --gallery.
const (
	galleryMemory = "memory"
	galleryFile   = "file"
	galleryMongo  = "mongo"
)

const connectTimeout = 10 * time.Second

type serveFlags struct {
	addr        string
	gallery     string
	mongoURI    string
	mongoDB     string
	redisURL    string
	cachePrefix string
	noCache     bool
	maxPixels   uint64
	maxLevels   int
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve compositions over HTTP",
		Long: `Serve compositions over HTTP with a gallery of recorded runs and
Prometheus metrics on /metrics.

Rendered artifacts are cached in the local cache directory, or in Redis when
--redis is set. Recorded compositions are kept in memory, in the local
gallery directory, or in MongoDB.`,
		Example: `  mondrian serve --addr :8080
  mondrian serve --gallery file --redis redis://localhost:6379/0
  mondrian serve --gallery mongo --mongo-uri mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, flags)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&flags.addr, "addr", ":8080", "listen address")
	fs.StringVar(&flags.gallery, "gallery", galleryMemory, "gallery backend: memory, file or mongo")
	fs.StringVar(&flags.mongoURI, "mongo-uri", "mongodb://localhost:27017", "MongoDB connection string for --gallery mongo")
	fs.StringVar(&flags.mongoDB, "mongo-db", appName, "MongoDB database for --gallery mongo")
	fs.StringVar(&flags.redisURL, "redis", "", "Redis URL for the artifact cache (default: local file cache)")
	fs.StringVar(&flags.cachePrefix, "cache-prefix", "", "prefix for cache keys when the cache is shared")
	fs.BoolVar(&flags.noCache, "no-cache", false, "disable the artifact cache")
	fs.Uint64Var(&flags.maxPixels, "max-pixels", server.DefaultMaxPixels, "largest canvas a request may ask for, in pixels")
	fs.IntVar(&flags.maxLevels, "max-levels", server.DefaultMaxLevels, "deepest subdivision a request may ask for")
	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, flags *serveFlags) error {
	ctx := cmd.Context()

	artifacts, err := c.serveCache(cmd, flags)
	if err != nil {
		return err
	}
	var keyer cache.Keyer
	if flags.cachePrefix != "" {
		keyer = cache.NewScopedKeyer(nil, flags.cachePrefix)
	}
	runner := pipeline.NewRunner(artifacts, keyer, c.Logger)
	defer runner.Close()

	store, err := c.serveGallery(cmd, flags)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	observability.NewPrometheus(reg).Register()
	defer observability.Reset()

	srv := server.New(runner, store, c.Logger,
		server.WithLimits(server.Limits{MaxPixels: flags.maxPixels, MaxLevels: flags.maxLevels}),
		server.WithMetrics(reg),
	)

	printSuccess("Serving on %s", StyleLink.Render(displayAddr(flags.addr)))
	printDetail("gallery: %s", flags.gallery)
	printNewline()
	return srv.ListenAndServe(ctx, flags.addr)
}

func (c *CLI) serveCache(cmd *cobra.Command, flags *serveFlags) (cache.Cache, error) {
	if flags.noCache {
		return cache.NewNullCache(), nil
	}
	if flags.redisURL == "" {
		return newCache(false)
	}
	c.Logger.Info("connecting to redis")
	rc, err := cache.NewRedisCache(cmd.Context(), flags.redisURL)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rc, nil
}

func (c *CLI) serveGallery(cmd *cobra.Command, flags *serveFlags) (gallery.Store, error) {
	switch flags.gallery {
	case galleryMemory:
		return gallery.NewMemoryStore(), nil
	case galleryFile:
		store, err := newGallery()
		if err != nil {
			return nil, err
		}
		c.Logger.Info("using file gallery", "dir", store.Path())
		return store, nil
	case galleryMongo:
		c.Logger.Info("connecting to mongodb", "db", flags.mongoDB)
		ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
		defer cancel()
		store, err := gallery.NewMongoStore(ctx, flags.mongoURI, flags.mongoDB, gallery.DefaultMongoCollection)
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		return store, nil
	}
	return nil, apperr.New(apperr.ErrCodeInvalidInput, "unknown gallery backend %q (use memory, file or mongo)", flags.gallery)
}

// displayAddr turns a listen address into a URL a user can open.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
