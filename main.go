package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harborview/app/backend"
)

// main runs the data layer headless: it connects to the configured backend,
// mirrors the overview and metrics streams, and echoes log entries until
// interrupted. The desktop shell embeds backend.App the same way.
func main() {
	settingsPath := flag.String("settings", "", "path to settings.yaml (defaults to the user config dir)")
	verbose := flag.Bool("v", false, "echo debug log entries")
	flag.Parse()

	logger := backend.NewLogger(0)
	logger.SetOnEntry(func(entry backend.LogEntry) {
		if entry.Level == backend.LogLevelDebug.String() && !*verbose {
			return
		}
		fmt.Printf("%s [%s] %s: %s\n", entry.Timestamp.Format(time.RFC3339), entry.Level, entry.Source, entry.Message)
	})

	app, err := backend.NewApp(backend.AppOptions{
		SettingsPath: *settingsPath,
		Logger:       logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "harborview:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Startup(ctx); err != nil {
		// Partial startup is still useful; streams reconnect and stores
		// can be refetched once the backend comes back.
		fmt.Fprintln(os.Stderr, "harborview: startup degraded:", err)
	}

	<-ctx.Done()
	app.Shutdown()
}
