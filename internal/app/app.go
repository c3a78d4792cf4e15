// Package app wires configuration into a ready-to-run responder. Both the
// Lambda and the REST entry points build their dependencies here.
package app

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hive-corporation/keyguard/internal/adapter/amazon"
	"github.com/hive-corporation/keyguard/internal/adapter/httpclient"
	"github.com/hive-corporation/keyguard/internal/adapter/notifier"
	"github.com/hive-corporation/keyguard/internal/adapter/repository"
	"github.com/hive-corporation/keyguard/internal/config"
	"github.com/hive-corporation/keyguard/internal/core/ports"
	"github.com/hive-corporation/keyguard/internal/core/service"
)

// App holds the wired responder and the resources that must be released.
type App struct {
	Responder *service.Responder
	Incidents *repository.PostgresRepository

	closers []func()
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	a := &App{}

	identity := amazon.NewIAMIdentityManager(iam.NewFromConfig(awsCfg))
	logs := amazon.NewCloudWatchLogSource(cloudwatchlogs.NewFromConfig(awsCfg))

	channels, err := a.notifiers(cfg, sns.NewFromConfig(awsCfg), logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	var n ports.Notifier
	if len(channels) > 0 {
		multi := notifier.NewMultiNotifier(logger, channels...)
		logger.Info("notifications enabled", "channels", multi.Name())
		n = multi
	} else {
		logger.Warn("no notification channel configured")
	}

	opts := []service.Option{service.WithLogger(logger)}

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		repo := repository.NewPostgresRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.Incidents = repo
		opts = append(opts, service.WithArchive(repo))
		logger.Info("incident archive enabled")
	}

	settings := service.Settings{
		LogGroup:    cfg.LogGroup,
		Lookback:    cfg.Lookback,
		RecordLimit: cfg.RecordLimit,
		Policy:      cfg.Policy,
	}
	a.Responder = service.New(identity, logs, n, settings, opts...)

	return a, nil
}

func (a *App) notifiers(cfg *config.Config, snsClient notifier.SNSAPI, logger *slog.Logger) ([]ports.Notifier, error) {
	var channels []ports.Notifier

	if cfg.SNSTopicARN != "" {
		channels = append(channels, notifier.NewSNSNotifier(snsClient, cfg.SNSTopicARN))
	}

	if cfg.SlackBotToken != "" {
		client := httpclient.New("slack", cfg.NotifyHTTPTimeout, httpclient.Config(cfg.NotifyRetry), logger)
		channels = append(channels, notifier.NewSlackNotifier(
			client,
			cfg.SlackBotToken,
			cfg.SlackChannel,
			cfg.SlackMentionTeam,
			cfg.SlackAPIURL,
		))
	}

	if cfg.NATSURL != "" {
		bus, err := notifier.NewNATSNotifier(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, bus.Close)
		channels = append(channels, bus)
	}

	return channels, nil
}
