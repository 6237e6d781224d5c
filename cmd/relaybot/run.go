package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/teamcomm/relaybot/internal/adapter"
	"github.com/teamcomm/relaybot/internal/concurrency"
	"github.com/teamcomm/relaybot/internal/config"
	"github.com/teamcomm/relaybot/internal/directory"
	"github.com/teamcomm/relaybot/internal/ingress"
	"github.com/teamcomm/relaybot/internal/interaction"
	"github.com/teamcomm/relaybot/internal/relay"
	"github.com/teamcomm/relaybot/internal/routing"
	"github.com/teamcomm/relaybot/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelay(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRelay(parent context.Context) error {
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is not set (BOT_TOKEN or telegram.bot_token)")
	}

	dataDir, err := store.ResolveDataDir(cfg.Store.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	lockTimeout, err := config.DurationOrDefault(cfg.Store.LockTimeout, config.DefaultStoreLockTimeout)
	if err != nil {
		return fmt.Errorf("store.lock_timeout: %w", err)
	}
	lockRetry, err := config.DurationOrDefault(cfg.Store.LockRetry, config.DefaultStoreLockRetry)
	if err != nil {
		return fmt.Errorf("store.lock_retry: %w", err)
	}
	guard, err := store.AcquireGuard(dataDir, store.GuardConfig{
		LockTimeout: lockTimeout,
		LockRetry:   lockRetry,
		MaxRetry:    cfg.Store.LockMaxRetry,
	})
	if err != nil {
		return fmt.Errorf("acquire data dir guard: %w", err)
	}
	defer guard.Release()

	mutes := store.NewMuteRegistry(store.MutedPath(dataDir))
	identities := store.NewIdentityStore(store.IdentitiesPath(dataDir))

	dir := directory.New(cfg.Relay.Roles)
	table := routing.New(cfg.Relay.Targets, cfg.Relay.Triggers)

	interactionTTL, err := config.DurationOrDefault(cfg.Relay.InteractionTTL, config.DefaultInteractionTTL)
	if err != nil {
		return fmt.Errorf("relay.interaction_ttl: %w", err)
	}
	sweepInterval, err := config.DurationOrDefault(cfg.Relay.SweepInterval, config.DefaultSweepInterval)
	if err != nil {
		return fmt.Errorf("relay.sweep_interval: %w", err)
	}
	interactions := interaction.NewStore(interactionTTL)

	janitor, err := interaction.NewJanitor(interactions, sweepInterval)
	if err != nil {
		return fmt.Errorf("build interaction janitor: %w", err)
	}

	submitTimeout, err := config.DurationOrDefault(cfg.Ingress.SubmitTimeout, config.DefaultIngressSubmitTimeout)
	if err != nil {
		return fmt.Errorf("ingress.submit_timeout: %w", err)
	}
	ing := ingress.NewIngress(cfg.Ingress.QueueSize, ingress.RuntimeConfig{SubmitTimeout: submitTimeout})

	telegram := adapter.NewTelegramAdapter(cfg.Telegram.BotToken, func(ctx context.Context, evt *ingress.Event) error {
		return ing.Submit(ctx, evt)
	}, cfg.Telegram.UpdateTimeout)

	sendTimeout, err := config.DurationOrDefault(cfg.Relay.SendTimeout, config.DefaultSendTimeout)
	if err != nil {
		return fmt.Errorf("relay.send_timeout: %w", err)
	}
	forwarder := relay.NewForwarder(telegram, sendTimeout)
	commands := relay.NewCommands(dir, mutes, identities, interactions, telegram, cfg.Relay.OversightRole, cfg.Relay.AdminRoles)
	router := relay.NewRouter(dir, table, mutes, identities, interactions, forwarder, telegram, commands, cfg.Relay.OversightRole)

	loop := relay.NewLoop(ing.Queue(), router, concurrency.NewKeyLockManager(), 0)

	signals := NewSignalHandler(parent)
	signals.Start()
	ctx := signals.Context()

	if err := loop.Start(ctx); err != nil {
		return fmt.Errorf("start relay loop: %w", err)
	}
	janitor.Start()

	if err := telegram.Start(ctx); err != nil {
		return fmt.Errorf("start telegram adapter: %w", err)
	}

	slog.Info("Relay running", "data_dir", dataDir, "roles", len(cfg.Relay.Roles))
	<-ctx.Done()

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := telegram.Stop(shutdownCtx); err != nil {
		slog.Warn("Telegram adapter stop failed", "error", err)
	}
	janitor.Stop()
	ing.Close()
	if err := loop.Stop(shutdownCtx); err != nil {
		slog.Warn("Relay loop stop failed", "error", err)
	}
	signals.Stop()

	return nil
}
