// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

// landmarks starts an HTTP server that serves landmark data and the images
// associated with each landmark.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"willnorris.com/go/imagestore"
	"willnorris.com/go/imagestore/internal/gcsbundle"
	"willnorris.com/go/imagestore/internal/httpbundle"
	"willnorris.com/go/imagestore/internal/s3bundle"
	"willnorris.com/go/imagestore/landmark"
)

const envPrefix = "LANDMARKS_"

// configFile is the YAML file flag values are read from when not set on
// the command line or in the environment.
var configFile = envOr(envPrefix+"CONFIG", "/etc/landmarks.yaml")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// sources returns the value sources for the named flag: the environment
// variable LANDMARKS_<NAME>, then the key name in the config file.
func sources(name string) cli.ValueSourceChain {
	env := envPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	return cli.NewValueSourceChain(
		cli.EnvVar(env),
		yaml.YAML(name, altsrc.StringSourcer(configFile)),
	)
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "landmarks",
		Usage: "serve landmark data and images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   "localhost:8080",
				Usage:   "TCP address to listen on",
				Sources: sources("addr"),
			},
			&cli.StringFlag{
				Name:    "bundle",
				Value:   "resources",
				Usage:   "location of landmark resources: a directory, file://, s3://, gcs://, or http(s):// URL",
				Sources: sources("bundle"),
			},
			&cli.StringFlag{
				Name:    "cache",
				Usage:   "space separated list of caches for resources fetched over http (memory, redis://, azure://, or a directory)",
				Sources: sources("cache"),
			},
			&cli.StringFlag{
				Name:    "data",
				Value:   landmark.DefaultDataFile,
				Usage:   "name of the landmark data file within the bundle",
				Sources: sources("data"),
			},
			&cli.StringFlag{
				Name:    "ext",
				Value:   strings.Join(imagestore.DefaultExtensions, ","),
				Usage:   "comma separated list of image file extensions to try, in order",
				Sources: sources("ext"),
			},
			&cli.IntFlag{
				Name:    "scale",
				Value:   imagestore.DefaultScale,
				Usage:   "pixel density of bundled images",
				Sources: sources("scale"),
			},
			&cli.DurationFlag{
				Name:    "max-age",
				Value:   24 * time.Hour,
				Usage:   "max-age sent to clients for images",
				Sources: sources("max-age"),
			},
			&cli.StringFlag{
				Name:    "user-agent",
				Value:   "landmarks",
				Usage:   "user-agent used when fetching resources over http",
				Sources: sources("user-agent"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "print verbose logging messages",
				Sources: sources("verbose"),
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("error creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	bundle, err := openBundle(ctx, cmd.String("bundle"), cmd.String("cache"), cmd.String("user-agent"), logger)
	if err != nil {
		return err
	}

	store := imagestore.NewStore(&imagestore.BundleLoader{
		Bundle:     bundle,
		Extensions: splitList(cmd.String("ext")),
		Scale:      int(cmd.Int("scale")),
		Logger:     logger,
	})
	store.Logger = logger

	catalog, err := landmark.LoadCatalog(ctx, bundle, cmd.String("data"))
	if err != nil {
		return fmt.Errorf("error loading landmarks: %w", err)
	}
	warm(ctx, store, catalog, logger)

	handler := imagestore.NewHandler(store, logger)
	handler.MaxAge = cmd.Duration("max-age")

	server := &http.Server{
		Addr:    cmd.String("addr"),
		Handler: newServer(handler, catalog, logger),

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("error shutting down server", zap.Error(err))
		}
	}()

	logger.Info("landmarks listening",
		zap.String("addr", server.Addr),
		zap.Int("landmarks", len(catalog.All())),
		zap.Int("images", store.Len()))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openBundle returns the Bundle for the location s.  caches configures
// caching of resources fetched over http, and is otherwise ignored.
func openBundle(ctx context.Context, s, caches, userAgent string, logger *zap.Logger) (imagestore.Bundle, error) {
	if s == "" {
		return nil, errors.New("no bundle specified")
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("error parsing bundle %q: %w", s, err)
	}

	switch u.Scheme {
	case "s3":
		return s3bundle.New(s)
	case "gcs":
		return gcsbundle.New(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
	case "http", "https":
		c, err := httpbundle.ParseCache(caches)
		if err != nil {
			return nil, err
		}
		b := httpbundle.New(u, c, nil)
		b.UserAgent = userAgent
		b.Logger = logger
		return b, nil
	case "file":
		return imagestore.DirBundle(u.Path), nil
	case "":
		return imagestore.DirBundle(s), nil
	default:
		return nil, fmt.Errorf("unsupported bundle %q", s)
	}
}

// warm loads the image of every landmark in c into s.  Landmarks whose
// image cannot be loaded are logged and skipped.
func warm(ctx context.Context, s *imagestore.Store, c *landmark.Catalog, logger *zap.Logger) {
	for _, l := range c.All() {
		if _, err := l.Image(ctx, s); err != nil {
			logger.Warn("error loading landmark image",
				zap.Int("id", l.ID),
				zap.String("image", l.ImageName),
				zap.Error(err))
		}
	}
}

func splitList(s string) []string {
	var list []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	return list
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
