package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
	"github.com/nozzlewatch/nozzlewatch/internal/bus"
	"github.com/nozzlewatch/nozzlewatch/internal/connectors"
	"github.com/nozzlewatch/nozzlewatch/internal/domain"
	"github.com/nozzlewatch/nozzlewatch/internal/notifications"
	"github.com/nozzlewatch/nozzlewatch/internal/settings"
)

const (
	saveTimeout         = 30 * time.Second
	defaultHistoryLimit = 20
	maxImagePreviewLen  = 48
)

const usageText = `usage: nozzlewatch-debug [--root dir] [--notify] <command> [args]

commands:
  fields                    list plugin settings with their allowed values
  export [-o file]          write current plugin settings as YAML
  import [--dry-run] file   stage settings from a YAML file and save them
  set field=value ...       stage and save individual settings
  poll [--for 30s]          log status snapshots from the engine
  history [-n 20]           print recent status history
`

type cliOptions struct {
	RootDir string
	Notify  bool
	Command string
	Args    []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error("run debug tool", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseCLI(args, stderr)
	if err != nil {
		return err
	}

	rt, err := nzapp.Initialize(ctx, nzapp.RuntimeOptions{RootDir: opts.RootDir, Console: stderr})
	if err != nil {
		return fmt.Errorf("initialize runtime: %w", err)
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			slog.Warn("close runtime", "error", closeErr)
		}
	}()

	logger := rt.LogManager.Logger("cli")
	logger.Info("starting nozzlewatch debug", "version", nzapp.BuildVersion(), "build_date", nzapp.BuildDateYMD(), "command", opts.Command)
	if opts.Notify {
		rt.Notifier.Set(notifications.NewDesktopSender(nzapp.DisplayName, rt.LogManager.Logger("notifications")))
	}

	switch opts.Command {
	case "fields":
		return printFields(stdout, rt.Settings)
	case "export":
		return runExport(ctx, rt, opts.Args, stdout, logger)
	case "import":
		return runImport(ctx, rt, opts.Args, stdout)
	case "set":
		return runSet(ctx, rt, opts.Args)
	case "poll":
		return runPoll(ctx, rt, opts.Args, logger)
	case "history":
		return runHistory(ctx, rt, opts.Args, stdout)
	default:
		return fmt.Errorf("unknown command %q", opts.Command)
	}
}

func parseCLI(args []string, output io.Writer) (cliOptions, error) {
	var opts cliOptions

	fs := pflag.NewFlagSet("nozzlewatch-debug", pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.SetInterspersed(false)
	fs.Usage = func() { _, _ = fmt.Fprint(output, usageText) }
	fs.StringVar(&opts.RootDir, "root", "", "data directory (default: user config dir)")
	fs.BoolVar(&opts.Notify, "notify", false, "show desktop notifications for settings saves")
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	if fs.NArg() == 0 {
		fs.Usage()

		return cliOptions{}, errors.New("missing command")
	}
	opts.Command = fs.Arg(0)
	opts.Args = fs.Args()[1:]

	return opts, nil
}

func printFields(w io.Writer, store *settings.Store) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "FIELD\tLABEL\tVALUE\tALLOWED")
	for _, desc := range store.Fields() {
		value, _ := store.PendingText(desc.ID)
		switch desc.Kind {
		case settings.KindSecret:
			if value != "" {
				value = redactedValue
			}
		case settings.KindMask:
			value = previewText(value, 16)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", desc.ID, desc.Label, value, desc.Allowed)
	}

	return tw.Flush()
}

func runExport(ctx context.Context, rt *nzapp.Runtime, args []string, stdout io.Writer, logger *slog.Logger) error {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	outPath := fs.StringP("output", "o", "", "output file (default: stdout)")
	redact := fs.Bool("redact-secrets", false, "replace tokens and webhook URLs with a placeholder")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if rt.Engine == nil {
		saved, err := rt.SettingsRepo.HasSettings(ctx)
		if err != nil {
			return fmt.Errorf("check saved settings: %w", err)
		}
		if !saved {
			logger.Warn("no settings saved yet, exporting defaults")
		}
	}

	raw, err := encodeSettingsYAML(rt.Settings, *redact)
	if err != nil {
		return err
	}
	if *outPath == "" {
		_, err = stdout.Write(raw)

		return err
	}
	if err := os.WriteFile(*outPath, raw, 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func runImport(ctx context.Context, rt *nzapp.Runtime, args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("import", pflag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "validate and print the staged changes without saving")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("import expects exactly one file argument")
	}

	var (
		raw []byte
		err error
	)
	if path := fs.Arg(0); path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read settings file: %w", err)
	}

	if _, err := importSettingsYAML(rt.Settings, raw); err != nil {
		return err
	}
	dirty := rt.Settings.Dirty()
	if len(dirty) == 0 {
		_, _ = fmt.Fprintln(stdout, "no changes")

		return nil
	}
	for _, id := range dirty {
		_, _ = fmt.Fprintf(stdout, "changed %s\n", id)
	}
	if *dryRun {
		rt.Settings.Revert()

		return nil
	}

	return saveSettings(ctx, rt.Settings)
}

type assignment struct {
	Field settings.FieldID
	Value string
}

func parseAssignments(args []string) ([]assignment, error) {
	if len(args) == 0 {
		return nil, errors.New("set expects at least one field=value argument")
	}

	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected field=value", arg)
		}
		out = append(out, assignment{Field: settings.FieldID(key), Value: value})
	}

	return out, nil
}

func runSet(ctx context.Context, rt *nzapp.Runtime, args []string) error {
	assignments, err := parseAssignments(args)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if err := rt.Settings.SetPending(a.Field, a.Value); err != nil {
			rt.Settings.Revert()

			return err
		}
	}

	return saveSettings(ctx, rt.Settings)
}

func saveSettings(ctx context.Context, store *settings.Store) error {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	return store.Save(ctx)
}

func runPoll(ctx context.Context, rt *nzapp.Runtime, args []string, logger *slog.Logger) error {
	fs := pflag.NewFlagSet("poll", pflag.ContinueOnError)
	listenFor := fs.Duration("for", 0, "poll duration, e.g. 30s (default: until interrupt)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if rt.Poller == nil {
		return errors.New("no engine configured: set engine.base_url in the app config")
	}

	statusSub := rt.Bus.Subscribe(connectors.TopicStatusSnapshot)
	connSub := rt.Bus.Subscribe(connectors.TopicConnStatus)
	defer rt.Bus.Unsubscribe(statusSub, connectors.TopicStatusSnapshot)
	defer rt.Bus.Unsubscribe(connSub, connectors.TopicConnStatus)

	rt.Poller.Start(rt.Ctx)

	var deadline <-chan time.Time
	if *listenFor > 0 {
		logger.Info("poll mode", "duration", *listenFor)
		deadline = time.After(*listenFor)
	} else {
		logger.Info("polling until interrupt")
	}

	return watch(ctx, logger, statusSub, connSub, deadline)
}

func watch(ctx context.Context, logger *slog.Logger, statusSub, connSub bus.Subscription, deadline <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deadline:
			return nil
		case raw, ok := <-connSub:
			if !ok {
				return nil
			}
			status, ok := raw.(connectors.ConnectionStatus)
			if !ok {
				continue
			}
			logger.Info("connection", "state", status.State, "target", status.Target, "error", status.Err)
		case raw, ok := <-statusSub:
			if !ok {
				return nil
			}
			snapshot, ok := raw.(domain.StatusSnapshot)
			if !ok {
				continue
			}
			logger.Info("status",
				"failures", snapshot.FailureCount,
				"ai_status", snapshot.AIStatus,
				"cpu_temp", snapshot.CPUTemperature,
				"image", previewText(snapshot.Image, maxImagePreviewLen),
			)
		}
	}
}

func runHistory(ctx context.Context, rt *nzapp.Runtime, args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	limit := fs.IntP("limit", "n", defaultHistoryLimit, "number of snapshots to print")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", *limit)
	}

	rows, err := rt.RecentStatus(ctx, *limit)
	if err != nil {
		return fmt.Errorf("load status history: %w", err)
	}

	return printHistory(stdout, rows)
}

func printHistory(w io.Writer, rows []domain.StatusSnapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RECEIVED\tFAILURES\tAI STATUS\tCPU TEMP")
	for _, s := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%.1f\n", s.ReceivedAt.Local().Format(time.DateTime), s.FailureCount, s.AIStatus, s.CPUTemperature)
	}

	return tw.Flush()
}

func previewText(v string, limit int) string {
	if len(v) <= limit {
		return v
	}

	return v[:limit] + "..."
}
