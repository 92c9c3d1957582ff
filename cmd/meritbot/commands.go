package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/ericfisherdev/meritbot/internal/adapter/driven/publish"
	"github.com/ericfisherdev/meritbot/internal/adapter/driven/restart"
	httphandler "github.com/ericfisherdev/meritbot/internal/adapter/driving/http"
	"github.com/ericfisherdev/meritbot/internal/application"
	"github.com/ericfisherdev/meritbot/internal/config"
	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "poll the repository and serve the HTTP API",
		Action: func(ctx context.Context, _ *cli.Command) error {
			app, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			return serve(ctx, app)
		},
	}
}

func newCycleCommand() *cli.Command {
	return &cli.Command{
		Name:  "cycle",
		Usage: "run exactly one decision cycle and exit",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "do not print the cycle summary",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			return runOneCycle(ctx, app.cycle, cmd.Root().Writer, cmd.Bool("quiet"))
		},
	}
}

func newMeritocracyCommand() *cli.Command {
	return &cli.Command{
		Name:  "meritocracy",
		Usage: "print the current meritocracy",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "published",
				Usage: "print the list written by the last cycle instead of recomputing it",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("published") {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				return printPublishedMeritocracy(cmd.Root().Writer, cfg.MeritocracyPath)
			}

			app, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			m, err := app.cycle.CurrentMeritocracy(ctx)
			if err != nil {
				return err
			}

			printMeritocracy(cmd.Root().Writer, m)
			return nil
		},
	}
}

func newVotersCommand() *cli.Command {
	return &cli.Command{
		Name:  "voters",
		Usage: "print the vote credit of every voter",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "print only the top `N` voters",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			voters, err := app.voters.ListVoters(ctx)
			if err != nil {
				return err
			}
			if limit := int(cmd.Int("limit")); limit > 0 && limit < len(voters) {
				voters = voters[:limit]
			}

			printVoters(cmd.Root().Writer, voters)
			return nil
		},
	}
}

// runOneCycle runs a single cycle without the process restarter. A cycle
// that merged code ends with restart.ExitCode so the supervisor can pick up
// the new code; the store is closed by the caller's deferred Close before
// the CLI exits.
func runOneCycle(ctx context.Context, runner application.CycleRunner, w io.Writer, quiet bool) error {
	result, cycleErr := runner.RunCycle(ctx)
	if !quiet {
		printCycle(w, result, cycleErr)
	}

	if !result.RestartRequested {
		return cycleErr
	}
	if cycleErr != nil {
		slog.Error("cycle aborted after merging", "cycle_id", result.ID, "error", cycleErr)
	}
	return cli.Exit(fmt.Sprintf("merged %d pull request(s), restart required", result.Merged), restart.ExitCode)
}

// printPublishedMeritocracy prints the list from the last published cycle.
func printPublishedMeritocracy(w io.Writer, path string) error {
	if path == "" {
		return errors.New("MERITBOT_MERITOCRACY_PATH is empty")
	}
	members, err := publish.ReadFile(path)
	if err != nil {
		return err
	}
	printMeritocracy(w, application.Meritocracy{Members: model.NewMeritocracySet(members...)})
	return nil
}

// serve runs the poll loop and the HTTP server until ctx is canceled.
func serve(ctx context.Context, app *app) error {
	go app.poll.Start(ctx)

	apiHandler := httphandler.NewHandler(app.voters, app.poll, app.health, app.cfg.Repo, slog.Default())

	srv := &http.Server{
		Addr:              app.cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(apiHandler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Triggered cycles hold the request open while every PR is processed.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", app.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	slog.Info("meritbot started",
		"repo", app.cfg.Repo,
		"listen_addr", app.cfg.ListenAddr,
		"poll_interval", app.cfg.PollInterval,
		"production", app.cfg.Production,
	)

	select {
	case <-ctx.Done():
	case err := <-srvErr:
		return err
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
