// Command signalhunt scores scavenger-hunt signal measurement logs.
//
// Usage:
//
//	signalhunt score  [-config event.yaml] [-input rows.csv] [-format text|json]
//	signalhunt enrich -config event.yaml -input sightings.csv [-output rows.csv]
//	signalhunt serve  [-config event.yaml] [-listen :8080]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ahrav/go-signalhunt/internal/application"
)

// errUsage marks invocation mistakes that should exit with status 2.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "signalhunt: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errUsage
	}

	switch args[0] {
	case "score":
		return runScore(ctx, args[1:], stdin, stdout, stderr)
	case "enrich":
		return runEnrich(ctx, args[1:], stdin, stdout, stderr)
	case "serve":
		return runServe(ctx, args[1:], stderr)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return errUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: signalhunt <command> [flags]

Commands:
  score   rank teams from a measurement log
  enrich  resolve area ids and node distances for field sightings
  serve   run the HTTP scoring API

Run "signalhunt <command> -h" for command flags.
`)
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	config    string
	logLevel  string
	logFormat string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "Path to the event YAML config (defaults to the stock rules)")
	fs.StringVar(&c.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&c.logFormat, "log-format", "text", "Log format: text or json")
}

func (c *commonFlags) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
		return nil, fmt.Errorf("%w: invalid -log-level %q", errUsage, c.logLevel)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.logFormat) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: invalid -log-format %q", errUsage, c.logFormat)
	}
}

func (c *commonFlags) event(ctx context.Context) (*application.Event, error) {
	if c.config == "" {
		return application.DefaultEvent(), nil
	}
	loader, err := application.NewConfigLoader()
	if err != nil {
		return nil, err
	}
	event, err := loader.LoadFromFile(ctx, c.config)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", c.config, err)
	}
	return event, nil
}

// openInput returns stdin for "-" or an empty path.
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(path)
}
