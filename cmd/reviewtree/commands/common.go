package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/MyNameIsWhaaat/reviewtree/internal/config"
	"github.com/MyNameIsWhaaat/reviewtree/internal/logging"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/fixture"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/notify"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/replytree"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/service"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/storage"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/storage/inmemory"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/storage/postgres"
)

// settings loads and validates the configuration named by the global
// --config flag and installs the logger it describes.
func settings(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	return cfg, nil
}

// openSource returns the configured comment source and a release func.
func openSource(ctx context.Context, cfg *config.Config) (storage.Source, func(), error) {
	switch cfg.Source.Kind {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		src := postgres.New(db)
		if cfg.Source.Product != "" {
			src = src.ForProduct(cfg.Source.Product)
		}
		return src, func() { _ = db.Close() }, nil
	default:
		return fixture.FileSource{Path: cfg.Source.Path}, func() {}, nil
	}
}

func loadComments(ctx context.Context, cfg *config.Config) ([]model.Comment, error) {
	src, release, err := openSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer release()

	comments, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	return comments, nil
}

// newNotifier always logs events and additionally publishes them to redis
// when an address is configured.
func newNotifier(cfg *config.Config) (notify.Notifier, func()) {
	if cfg.Redis.Addr == "" {
		return notify.Log{}, func() {}
	}

	client := notify.NewRedisClient(cfg.Redis.Addr)
	log.Info().Str("addr", cfg.Redis.Addr).Str("channel", cfg.Redis.Channel).Msg("publishing events to redis")
	return notify.Multi{notify.Log{}, notify.NewRedis(client, cfg.Redis.Channel)}, func() { _ = client.Close() }
}

func serviceOptions(cfg *config.Config, n notify.Notifier) (service.Options, error) {
	policy, err := replytree.ParseOrphanPolicy(cfg.Replies.OrphanPolicy)
	if err != nil {
		return service.Options{}, err
	}
	return service.Options{
		PageSize:     cfg.Query.PageSize,
		OrphanPolicy: policy,
		SubmitDelay:  cfg.Replies.SubmitDelay,
		Author:       cfg.Replies.Author,
		Notifier:     n,
	}, nil
}

func newService(ctx context.Context, cfg *config.Config, n notify.Notifier) (*service.Service, error) {
	comments, err := loadComments(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts, err := serviceOptions(cfg, n)
	if err != nil {
		return nil, err
	}
	return service.New(inmemory.New(comments), opts), nil
}
