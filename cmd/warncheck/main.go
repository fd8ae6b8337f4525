// Command warncheck runs one reconciliation pass against the WARN notice
// source and reports whether the dataset grew. It takes no arguments; the
// data directory comes from WARN_DATA_DIR.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"layoffs-engine/internal/config"
	"layoffs-engine/internal/logging"
	"layoffs-engine/internal/poll"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, config.DataDir(), os.Stdout, os.Stderr))
}

func run(ctx context.Context, dataDir string, stdout, stderr io.Writer) int {
	res, err := config.Resolve(dataDir, filepath.Join("config", "config.yml"))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logging.Configure(res.Config.App.LogLevel, res.Config.App.LogFormat)

	out, err := poll.CheckOnce(ctx, res.Config)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, out.Message())
	return 0
}
