package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/Davincible/gfaes/internal/cli"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	rootCmd := cli.NewRootCommand(fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit))

	if err := rootCmd.Execute(); err != nil {
		code := cli.ExitCode(err)
		slog.Error("Command execution failed", "error", err, "exit_code", code)

		red := color.New(color.FgRed, color.Bold)
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := cli.Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(code)
	}
}
