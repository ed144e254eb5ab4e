// Command catalog-snapshot fetches the full product catalog from the remote
// API and writes it as a compressed snapshot file, which the server can then
// serve with STOREFRONT_CATALOG_SOURCE=snapshot.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/quickshop/storefront/internal/domain/catalog"
	"github.com/quickshop/storefront/internal/remote"
)

func main() {
	var (
		baseURL string
		out     string
		timeout time.Duration
	)

	flag.StringVar(&baseURL, "catalog-url", "https://fakestoreapi.com", "remote catalog API base URL")
	flag.StringVar(&out, "out", "data/catalog.json.gz", "snapshot output path")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "total fetch timeout")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, baseURL, out, timeout); err != nil {
		slog.Error("snapshot failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("snapshot completed successfully", slog.String("out", out))
}

func run(ctx context.Context, baseURL, out string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := remote.NewClient(remote.ClientConfig{
		BaseURL: baseURL,
		Timeout: timeout,
	})
	defer client.Close()

	slog.Info("fetching catalog", slog.String("url", baseURL))

	var (
		products   []catalog.Product
		categories []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = client.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = client.Categories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "fetch catalog")
	}

	slog.Info("catalog fetched",
		slog.Int("products", len(products)),
		slog.Int("categories", len(categories)),
	)

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "create snapshot file")
	}

	snap := &remote.Snapshot{
		TakenAt:    time.Now().UTC(),
		Products:   products,
		Categories: categories,
	}
	if err := remote.WriteSnapshot(f, snap); err != nil {
		f.Close()
		return errors.Wrap(err, "write snapshot")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close snapshot file")
	}
	return nil
}
