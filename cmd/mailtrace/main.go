// Command mailtrace enriches email addresses with publicly findable
// context about their owners.
//
// Usage:
//
//	mailtrace enrich jan.novak@example.cz   # one address
//	mailtrace run                           # every pending record
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/osintlab/mailtrace/pkg/analyze"
	"github.com/osintlab/mailtrace/pkg/auth"
	"github.com/osintlab/mailtrace/pkg/classify"
	"github.com/osintlab/mailtrace/pkg/config"
	"github.com/osintlab/mailtrace/pkg/enrich"
	"github.com/osintlab/mailtrace/pkg/httpcache"
	"github.com/osintlab/mailtrace/pkg/instagram"
	"github.com/osintlab/mailtrace/pkg/namedict"
	"github.com/osintlab/mailtrace/pkg/queryplan"
	"github.com/osintlab/mailtrace/pkg/render"
	"github.com/osintlab/mailtrace/pkg/resolver"
	"github.com/osintlab/mailtrace/pkg/search"
	"github.com/osintlab/mailtrace/pkg/store"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	verbose := flag.Bool("v", false, "verbose logging (same as -debug)")
	noCache := flag.Bool("no-cache", false, "disable HTTP caching (enabled by default with 7-day TTL)")
	cacheTTL := flag.Duration("cache-ttl", 7*24*time.Hour, "cache time-to-live")
	dryRun := flag.Bool("dry-run", false, "use an in-memory store instead of PostgreSQL")
	noInstagram := flag.Bool("no-instagram", false, "skip Instagram profile lookups")
	dictDir := flag.String("dict", "", "name dictionary directory (overrides MAILTRACE_DICT_DIR)")
	dsn := flag.String("dsn", "", "PostgreSQL connection string (overrides MAILTRACE_DSN)")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if *debug || *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := config.Load(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		os.Exit(1)
	}
	if *dictDir != "" {
		cfg.DictDir = *dictDir
	}
	if *dsn != "" {
		cfg.DSN = *dsn
	}

	ctx := context.Background()

	var httpCache *httpcache.Cache
	if !*noCache {
		httpCache, err = httpcache.New(*cacheTTL)
		if err != nil {
			logger.Warn("failed to initialize cache, continuing without cache", "error", err)
		} else {
			defer func() {
				if err := httpCache.Close(); err != nil {
					logger.Warn("failed to close cache", "error", err)
				}
			}()
			logger.Debug("HTTP cache initialized", "ttl", cacheTTL.String())
		}
	}

	recordStore, err := openStore(ctx, cfg, logger, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open store: %v\n", err)
		os.Exit(1) //nolint:gocritic // exitAfterDefer is acceptable in main
	}
	defer recordStore.Close()

	engine, err := buildEngine(ctx, cfg, logger, httpCache, recordStore, *noInstagram)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "enrich":
		if flag.NArg() != 2 {
			usage()
			os.Exit(1)
		}
		report, err := engine.Enrich(ctx, flag.Arg(1))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := outputJSON(report); err != nil {
			fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
			os.Exit(1)
		}
	case "run":
		reports, err := engine.Run(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := outputJSON(reports); err != nil {
			fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: mailtrace [options] enrich <email>")
	fmt.Fprintln(os.Stderr, "       mailtrace [options] run")
	fmt.Fprintln(os.Stderr, "\nOptions:")
	flag.PrintDefaults()
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, dryRun bool) (store.Store, error) {
	if dryRun || cfg.DSN == "" {
		if cfg.DSN == "" && !dryRun {
			logger.Warn("no DSN configured, using in-memory store")
		}
		return store.NewMemory(), nil
	}
	return store.NewPostgres(ctx, cfg.DSN, store.WithLogger(logger))
}

func buildEngine(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	httpCache *httpcache.Cache,
	recordStore store.Store,
	noInstagram bool,
) (*enrich.Engine, error) {
	dict := namedict.Load(cfg.DictDir, namedict.WithLogger(logger))

	classifierOpts := []classify.Option{classify.WithLogger(logger)}
	if cfg.ClassifierURL != "" {
		classifierOpts = append(classifierOpts, classify.WithEndpoint(cfg.ClassifierURL))
	}
	if cfg.ClassifierToken != "" {
		classifierOpts = append(classifierOpts, classify.WithToken(cfg.ClassifierToken))
	}
	classifier, err := classify.New(ctx, classifierOpts...)
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	searchOpts := []search.Option{search.WithLogger(logger)}
	if httpCache != nil {
		searchOpts = append(searchOpts, search.WithHTTPCache(httpCache))
	}

	var instaClient *instagram.Client
	if !noInstagram {
		instaClient, err = newInstagramClient(ctx, logger, httpCache)
		if err != nil {
			return nil, fmt.Errorf("create instagram client: %w", err)
		}
	}

	return enrich.New(enrich.Config{
		Resolver: resolver.New(dict, resolver.WithLogger(logger)),
		Planner:  queryplan.New(queryplan.WithLogger(logger)),
		Search:   search.NewDuckDuckGo(searchOpts...),
		NewRenderer: func(ctx context.Context) (enrich.Renderer, error) {
			return render.New(ctx, render.WithLogger(logger))
		},
		Analyzer:       analyze.New(classifier, analyze.WithLogger(logger)),
		Store:          recordStore,
		Instagram:      instaClient,
		Logger:         logger,
		SearchDelayMin: 2 * time.Second,
		SearchDelayMax: 5 * time.Second,
	})
}

func newInstagramClient(ctx context.Context, logger *slog.Logger, httpCache *httpcache.Cache) (*instagram.Client, error) {
	opts := []instagram.Option{instagram.WithLogger(logger)}
	if httpCache != nil {
		opts = append(opts, instagram.WithHTTPCache(httpCache))
	}

	cookies, err := auth.Chain(ctx, auth.EnvSource{}, auth.NewBrowserSource(logger))
	if err != nil {
		logger.Debug("cookie lookup failed, continuing anonymously", "error", err)
	}
	if len(cookies) > 0 {
		jar, err := auth.NewCookieJar(cookies)
		if err != nil {
			return nil, fmt.Errorf("build cookie jar: %w", err)
		}
		logger.Info("instagram session cookies loaded")
		opts = append(opts, instagram.WithCookieJar(jar))
	}

	return instagram.New(ctx, opts...)
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
