// Package cli implements the cheatstack commands and the dependency wiring they share.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/sai-sandeep-seelam/CheatStack/internal/cms"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/config"
	pfirestore "github.com/sai-sandeep-seelam/CheatStack/internal/platform/firestore"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/jobs"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/secrets"
	"github.com/sai-sandeep-seelam/CheatStack/internal/repositories"
	firestoreRepo "github.com/sai-sandeep-seelam/CheatStack/internal/repositories/firestore"
	"github.com/sai-sandeep-seelam/CheatStack/internal/services"
)

// runtime holds the wired services for one command invocation.
type runtime struct {
	cfg           config.Config
	logger        *zap.Logger
	catalog       services.CatalogService
	contributions services.ContributionService
	checks        []repositories.DependencyCheck

	closers []func() error
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.logger.Warn("shutdown cleanup failed", zap.Error(err))
		}
	}
	rt.closers = nil
}

// lazySecretResolver connects to Secret Manager only when configuration holds a reference.
type lazySecretResolver struct {
	logger *zap.Logger

	once     sync.Once
	resolver *secrets.Resolver
	err      error
}

func (l *lazySecretResolver) ResolveSecret(ctx context.Context, ref string) (string, error) {
	l.once.Do(func() {
		l.resolver, l.err = secrets.NewResolver(ctx, nil,
			secrets.WithLogger(l.logger.Named("secrets")),
			secrets.WithDefaultProject(os.Getenv("GOOGLE_CLOUD_PROJECT")),
		)
	})
	if l.err != nil {
		return "", l.err
	}
	return l.resolver.ResolveSecret(ctx, ref)
}

func (l *lazySecretResolver) Close() error {
	if l.resolver == nil {
		return nil
	}
	return l.resolver.Close()
}

func loadConfig(ctx context.Context, envFile string, logger *zap.Logger, extra ...config.Option) (config.Config, error) {
	resolver := &lazySecretResolver{logger: logger}
	defer func() {
		if err := resolver.Close(); err != nil {
			logger.Warn("secret resolver close error", zap.Error(err))
		}
	}()

	opts := []config.Option{config.WithSecretResolver(resolver)}
	if strings.TrimSpace(envFile) != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	opts = append(opts, extra...)
	cfg, err := config.Load(ctx, opts...)
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			logger.Error("invalid configuration", zap.Strings("fields", verr.Fields()))
		}
		return config.Config{}, err
	}
	return cfg, nil
}

// buildRuntime wires content source, cache slot, templates and services from cfg. Contribution
// intake is only wired when withContributions is set.
func buildRuntime(ctx context.Context, cfg config.Config, logger *zap.Logger, withContributions bool) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger}

	var provider *pfirestore.Provider
	if cfg.Content.Source == config.ContentSourceFirestore || cfg.Cache.Backend == config.CacheBackendFirestore {
		provider = pfirestore.NewProvider(cfg.Firestore)
		rt.closers = append(rt.closers, provider.Close)
		rt.checks = append(rt.checks, repositories.DependencyCheck{
			Name: "firestore",
			Check: func(ctx context.Context) error {
				_, err := provider.Client(ctx)
				return err
			},
		})
	}

	source, err := newCatalogSource(cfg, provider)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.checks = append(rt.checks, repositories.DependencyCheck{
		Name:    "catalog_source",
		Timeout: cfg.Content.Timeout,
		Check: func(ctx context.Context) error {
			_, err := source.ListCheatsheets(ctx)
			return err
		},
	})

	store, err := newCacheStore(cfg, provider)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.checks = append(rt.checks, repositories.DependencyCheck{
		Name: "cache_slot",
		Check: func(ctx context.Context) error {
			_, _, err := store.Get(ctx, services.CacheSlotKey)
			return err
		},
	})

	templates, err := cms.LoadTemplates(cfg.Content.Dir)
	if err != nil {
		rt.Close()
		return nil, err
	}

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{
		Source:        source,
		Cache:         services.NewSessionCache(ctx, store, logger.Named("cache")),
		Templates:     templates,
		Logger:        logger,
		PageSize:      cfg.Catalog.PageSize,
		SectionLimit:  cfg.Catalog.SectionLimit,
		SourceTimeout: cfg.Content.Timeout,
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("catalog service: %w", err)
	}
	rt.catalog = catalog

	if withContributions {
		publisher, err := rt.newContributionPublisher(ctx)
		if err != nil {
			rt.Close()
			return nil, err
		}
		contributions, err := services.NewContributionService(services.ContributionServiceDeps{
			Publisher: publisher,
			Logger:    logger,
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.contributions = contributions
	}
	return rt, nil
}

func newCatalogSource(cfg config.Config, provider *pfirestore.Provider) (repositories.CatalogSource, error) {
	switch cfg.Content.Source {
	case config.ContentSourceRemote:
		return cms.NewClient(cfg.Content.BaseURL,
			cms.WithToken(cfg.Content.Token),
			cms.WithHTTPClient(&http.Client{Timeout: cfg.Content.Timeout}),
		), nil
	case config.ContentSourceFirestore:
		return firestoreRepo.NewCatalogRepository(provider, cfg.Firestore.CatalogCollection), nil
	case config.ContentSourceStatic, "":
		return cms.StaticSource{}, nil
	}
	return nil, fmt.Errorf("unknown content source %q", cfg.Content.Source)
}

func newCacheStore(cfg config.Config, provider *pfirestore.Provider) (repositories.CacheStore, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendFile:
		return repositories.NewFileCacheStore(cfg.Cache.File)
	case config.CacheBackendFirestore:
		return firestoreRepo.NewCacheRepository(provider, cfg.Cache.Collection), nil
	case config.CacheBackendMemory, "":
		return repositories.NewMemoryCacheStore(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

func (rt *runtime) newContributionPublisher(ctx context.Context) (services.ContributionPublisher, error) {
	if !rt.cfg.Contributions.Enabled() {
		rt.logger.Info("contribution topic not configured; logging submissions")
		return services.LogContributionPublisher{Logger: rt.logger.Named("contributions")}, nil
	}

	client, err := pubsub.NewClient(ctx, rt.cfg.Contributions.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	topic := client.Topic(rt.cfg.Contributions.Topic)
	rt.closers = append(rt.closers, func() error {
		topic.Stop()
		return client.Close()
	})

	publisher, err := jobs.NewPubSubContributionPublisher(topic)
	if err != nil {
		return nil, err
	}
	rt.checks = append(rt.checks, repositories.DependencyCheck{
		Name: "contributions_topic",
		Check: func(ctx context.Context) error {
			ok, err := topic.Exists(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("topic %s does not exist", topic.ID())
			}
			return nil
		},
	})
	return publisher, nil
}
