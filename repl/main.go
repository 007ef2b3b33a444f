// Command mirage-repl is an interactive test REPL for the mirage engine.
// It reads one query per line and writes structured TOML results to stdout.
//
// Usage:
//
//	./mirage-repl                  # interactive, TOML on screen
//	./mirage-repl > log.toml       # prompt on screen, TOML to file
//	./mirage-repl -q "tea plants"  # one query, then exit
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/term"

	mirage "github.com/Paranoid-AF/mirage"
	"github.com/Paranoid-AF/mirage/engine"
)

const prompt = "> "

// CLI holds the command-line flags.
type CLI struct {
	Verbose   bool   `short:"v" help:"Log schemas and raw completions to stderr."`
	Query     string `short:"q" help:"Run a single query and exit."`
	ConfigDir string `help:"Read config.toml and prompt.txt from this directory." type:"path"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("mirage-repl"),
		kong.Description("Query the mirage engine interactively."),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if cli.ConfigDir != "" {
		os.Setenv("MIRAGE_CONFIG_DIR", cli.ConfigDir)
	}

	cfg, err := mirage.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	for _, w := range mirage.ValidateConfig(cfg) {
		slog.Warn("config", "warning", w)
	}

	r := &repl{
		engine: engine.NewFromConfig(cfg),
		out:    os.Stdout,
		tty:    os.Stderr,
	}

	if cli.Query != "" {
		if !r.search(context.Background(), cli.Query) {
			os.Exit(1)
		}
		return
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Fprintf(r.tty, "mirage repl\n")
		fmt.Fprintf(r.tty, "endpoint: %s\n", mirage.ResolveCompletionEndpoint(cfg))
		fmt.Fprintf(r.tty, "\ncommands:\n")
		fmt.Fprintf(r.tty, "  :schema  print the output schema\n")
		fmt.Fprintf(r.tty, "  :stats   show cache size\n")
		fmt.Fprintf(r.tty, "  :quit    exit\n\n")
	}

	if err := r.run(context.Background(), os.Stdin, interactive); err != nil {
		fmt.Fprintf(r.tty, "read error: %v\n", err)
		os.Exit(1)
	}
}

// repl reads queries and writes one TOML entry per query to out. Summaries
// and command output go to tty.
type repl struct {
	engine *engine.Engine
	out    io.Writer
	tty    io.Writer
}

// run processes lines from in until EOF or :quit.
func (r *repl) run(ctx context.Context, in io.Reader, interactive bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(r.tty, prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		text := strings.TrimRight(scanner.Text(), "\r")
		switch text {
		case "":
			continue
		case ":quit", ":q":
			return nil
		case ":schema":
			schema, _ := json.MarshalIndent(engine.Schema(), "", "  ")
			fmt.Fprintf(r.tty, "%s\n\n", schema)
			continue
		case ":stats":
			fmt.Fprintf(r.tty, "cached queries: %d\n\n", r.engine.Cache().Len())
			continue
		}

		r.search(ctx, text)
	}
}

// search runs one query, prints a summary to tty and the TOML entry to out.
// It reports whether the search succeeded.
func (r *repl) search(ctx context.Context, query string) bool {
	_, cached := r.engine.Cache().Lookup(query)

	start := time.Now()
	result, err := r.engine.Search(ctx, query)
	elapsed := time.Since(start)

	if err != nil {
		fmt.Fprintf(r.tty, "error [%s]: %s\n\n", mirage.ErrorCode(err), mirage.ErrorMessage(err))
	} else {
		if p := result.KnowledgePanel; p != nil {
			fmt.Fprintf(r.tty, "  %s: %s\n", p.Name, p.Blurb)
		}
		for i, res := range result.Results {
			fmt.Fprintf(r.tty, "  %d. %s\n", i+1, res.Title)
		}
		fmt.Fprintln(r.tty)
	}

	e := newEntry(query, cached, elapsed, result, err)
	if werr := writeEntry(r.out, e); werr != nil {
		slog.Warn("failed to write entry", "error", werr)
	}
	return err == nil
}
