package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		var exit cli.ExitCoder
		if errors.As(err, &exit) {
			os.Exit(exit.ExitCode())
		}
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	serveCmd := newServeCommand()
	return &cli.Command{
		Name:  "meritbot",
		Usage: "merge or close pull requests by community vote",
		Commands: []*cli.Command{
			serveCmd,
			newCycleCommand(),
			newMeritocracyCommand(),
			newVotersCommand(),
		},
		// No subcommand runs the bot.
		Action: serveCmd.Action,
	}
}
