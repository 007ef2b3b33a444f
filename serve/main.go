// Command mirage-serve is the mirage daemon.
// It answers search queries over HTTP with results written by a local
// completion service, caching every validated page for the life of the process.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"

	mirage "github.com/Paranoid-AF/mirage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// CLI holds the command-line flags.
type CLI struct {
	Verbose bool   `short:"v" help:"Log schemas, raw completions and every request to stderr."`
	Version bool   `help:"Print version and exit."`
	Listen  string `short:"l" help:"Address to listen on (overrides config and MIRAGE_LISTEN_ADDR)."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("mirage-serve"),
		kong.Description("Serve search results written by a local completion service."),
	)

	if cli.Version {
		fmt.Println("mirage-serve", Version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	gin.SetMode(gin.ReleaseMode)

	cfg, err := mirage.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "path", mirage.ConfigPath(), "error", err)
		os.Exit(1)
	}
	for _, w := range mirage.ValidateConfig(cfg) {
		slog.Warn("config", "warning", w)
	}

	addr := mirage.ResolveListenAddr(cfg)
	if cli.Listen != "" {
		addr = cli.Listen
	}

	slog.Info("starting", "listen", addr, "endpoint", mirage.ResolveCompletionEndpoint(cfg))

	srv, err := NewServer(addr, cfg)
	if err != nil {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		<-sigCh
		slog.Info("shutting down")
		srv.Close()
		close(done)
	}()

	slog.Info("ready", "addr", srv.Addr().String())
	if err := srv.Serve(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
