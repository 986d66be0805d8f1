package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/GbredngleK/NG-Insider-Bot/bot"
	"github.com/GbredngleK/NG-Insider-Bot/catalog"
	"github.com/GbredngleK/NG-Insider-Bot/config"
	"github.com/GbredngleK/NG-Insider-Bot/conversation"
	"github.com/GbredngleK/NG-Insider-Bot/filter"
	"github.com/GbredngleK/NG-Insider-Bot/grpc/health"
	"github.com/GbredngleK/NG-Insider-Bot/handler"
	"github.com/GbredngleK/NG-Insider-Bot/moderation"
	"github.com/GbredngleK/NG-Insider-Bot/session"
	"github.com/GbredngleK/NG-Insider-Bot/store"
	"github.com/GbredngleK/NG-Insider-Bot/utils"
	"github.com/GbredngleK/NG-Insider-Bot/vote"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	sessionSweepInterval = 5 * time.Minute
	contextPurgeInterval = time.Hour
)

// expiredPurger is implemented by backends without native key expiry.
type expiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	backend, err := store.Open(cfg.Storage, cfg.Limits)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer backend.Close()

	b, err := bot.New(cfg, log.WithField("component", "bot"))
	if err != nil {
		return err
	}

	sessions := session.NewMemoryStore(cfg.Session.IdleTTL)
	auth := utils.NewAuthorizer(cfg.Commands.Auth)
	engine := conversation.New(cfg, backend, sessions, cat, filter.New(cfg.Filter.ExtraWords...),
		log.WithField("component", "conversation"))
	coord := moderation.New(backend,
		handler.ChannelPublisher{Transport: b, ChannelID: cfg.Channels.PublishChannelID},
		auth, cfg.Links, log.WithField("component", "moderation"))

	b.SetRouter(handler.NewRouter(handler.Deps{
		Conversation: engine,
		Moderation:   coord,
		Votes:        vote.NewService(backend, log.WithField("component", "vote")),
		Archive:      backend,
		Sessions:     sessions,
		Auth:         auth,
		Transport:    b,
		Channels:     cfg.Channels,
		Log:          log.WithField("component", "router"),
	}))

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Health.Addr != "" {
		hs := health.New(log.WithField("component", "health"))
		b.OnStatus(hs.SetServing)
		g.Go(func() error { return hs.Run(ctx, cfg.Health.Addr) })
	}

	g.Go(func() error { return b.Run(ctx) })

	g.Go(func() error {
		sessions.RunJanitor(ctx, sessionSweepInterval, func(n int) {
			log.WithField("sessions", n).Debug("Dropped idle sessions")
		})
		return nil
	})

	if purger, ok := backend.(expiredPurger); ok {
		g.Go(func() error {
			runPurger(ctx, purger, log)
			return nil
		})
	}

	log.WithFields(logrus.Fields{
		"storage": cfg.Storage.Driver,
		"health":  cfg.Health.Addr,
	}).Info("Starting review bot")
	return g.Wait()
}

func runPurger(ctx context.Context, p expiredPurger, log logrus.FieldLogger) {
	ticker := time.NewTicker(contextPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				log.WithError(err).Warn("Failed to purge expired contexts")
				continue
			}
			if n > 0 {
				log.WithField("contexts", n).Info("Purged expired contexts")
			}
		}
	}
}
