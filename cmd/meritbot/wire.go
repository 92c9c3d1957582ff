package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	githubadapter "github.com/ericfisherdev/meritbot/internal/adapter/driven/github"
	postgresadapter "github.com/ericfisherdev/meritbot/internal/adapter/driven/postgres"
	"github.com/ericfisherdev/meritbot/internal/adapter/driven/publish"
	"github.com/ericfisherdev/meritbot/internal/adapter/driven/restart"
	sqliteadapter "github.com/ericfisherdev/meritbot/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/meritbot/internal/adapter/driving/http"
	"github.com/ericfisherdev/meritbot/internal/application"
	"github.com/ericfisherdev/meritbot/internal/config"
	"github.com/ericfisherdev/meritbot/internal/domain/port/driven"
)

// app holds the wired services shared by every command.
type app struct {
	cfg    *config.Config
	voters driven.VoterStore
	health httphandler.HealthChecker
	cycle  *application.CycleService
	poll   *application.PollService
	close  func() error
}

// Close releases the store.
func (a *app) Close() {
	if a.close == nil {
		return
	}
	if err := a.close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// bootstrap loads configuration, installs the logger, opens and migrates
// the store, and wires the application services.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	slog.Info("config loaded",
		"repo", cfg.Repo,
		"bot_login", cfg.BotLogin,
		"store", cfg.Store,
		"production", cfg.Production,
		"poll_interval", cfg.PollInterval,
		"base_window", cfg.BaseWindow,
		"extended_window", cfg.ExtendedWindow,
	)
	if !cfg.HasGitHubCredentials() {
		slog.Warn("no github token configured, writes will fail")
	}

	a := &app{cfg: cfg}

	var mentions driven.MentionStore
	switch cfg.Store {
	case config.StorePostgres:
		if err := postgresadapter.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		db, err := postgresadapter.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.voters = postgresadapter.NewVoterRepo(db)
		mentions = postgresadapter.NewMentionRepo(db)
		a.health = db
		a.close = db.Close
		slog.Info("database opened", "store", cfg.Store)
	default:
		db, err := sqliteadapter.NewDB(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.voters = sqliteadapter.NewVoterRepo(db)
		mentions = sqliteadapter.NewMentionRepo(db)
		a.health = db
		a.close = db.Close
		slog.Info("database opened", "store", cfg.Store, "path", db.Path())
	}

	restartMode, err := restart.ParseMode(cfg.RestartMode)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("MERITBOT_RESTART_MODE: %w", err)
	}

	gh := githubadapter.NewClient(cfg.GitHubToken, cfg.BotLogin)

	a.cycle = application.NewCycleService(gh, gh, a.voters, mentions, publish.NewPublisher(cfg.MeritocracyPath), application.CycleConfig{
		RepoFullName:    cfg.Repo,
		BotLogin:        cfg.BotLogin,
		Production:      cfg.Production,
		TopVoters:       cfg.TopVoters,
		TopContributors: cfg.TopContributors,
		Windows:         application.NewVotingWindowPolicy(cfg.BaseWindow, cfg.ExtendedWindow),
		Policy:          cfg.Policy,
	})
	a.poll = application.NewPollService(a.cycle, restart.NewRestarter(restartMode, cfg.StartupCommand), cfg.PollInterval)

	return a, nil
}
