package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ogadix/splash/internal/config"
	"github.com/ogadix/splash/internal/history"
	"github.com/ogadix/splash/internal/i18n"
	"github.com/ogadix/splash/internal/icon"
	"github.com/ogadix/splash/internal/imageset"
	"github.com/ogadix/splash/internal/mqtt"
	"github.com/ogadix/splash/internal/paths"
	"github.com/ogadix/splash/internal/splash"
	"github.com/ogadix/splash/internal/webhook"
)

const rule = "=================================================="

// job is a fully resolved generation request.
type job struct {
	IconPath   string
	Background string
	Options    splash.Options
	OutDir     string
	Lang       string
	Contents   bool
	Log        bool
	MQTT       config.MQTT
	Webhook    config.Webhook
}

// buildJob merges the command line over the config file.
// Priority: CLI > config file > built-in defaults.
func buildJob(a cliArgs, cfg config.Config, root string) (job, error) {
	switch len(a.positional) {
	case 1, 2:
	default:
		return job{}, fmt.Errorf("expected <icon_path> [icon_size]")
	}

	if len(a.positional) == 2 {
		size, err := strconv.Atoi(a.positional[1])
		if err != nil || size <= 0 {
			return job{}, fmt.Errorf("%w, got %q", icon.ErrInvalidSize, a.positional[1])
		}
		cfg.IconSize = size
	}
	if a.color != "" {
		cfg.BackgroundColor = a.color
	}
	if a.style != "" {
		cfg.Style = a.style
	}
	if a.rounded {
		if a.style != "" && a.style != string(splash.StyleRounded) {
			return job{}, fmt.Errorf("--rounded conflicts with --style %s", a.style)
		}
		cfg.Style = string(splash.StyleRounded)
	}

	opts, err := cfg.Options()
	if err != nil {
		return job{}, err
	}

	out := lo.CoalesceOrEmpty(a.outDir, cfg.OutputDir, paths.OutputDir(root))

	return job{
		IconPath:   a.positional[0],
		Background: "#" + strings.TrimPrefix(strings.ToLower(strings.TrimSpace(cfg.BackgroundColor)), "#"),
		Options:    opts,
		OutDir:     out,
		Lang:       i18n.Detect(a.lang, cfg.Language),
		Contents:   a.contents || cfg.Contents,
		Log:        a.log || cfg.Log,
		MQTT:       cfg.MQTT,
		Webhook:    cfg.Webhook,
	}, nil
}

// generate renders the splash frame and writes every variant to j.OutDir,
// printing progress to w. The icon is loaded and the frame rendered before
// anything is written, so a bad icon never leaves files behind.
func generate(j job, w io.Writer) (history.Run, error) {
	loc := i18n.New(j.Lang)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, loc.T("Title", nil))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, loc.T("Icon", map[string]any{"Path": j.IconPath}))
	fmt.Fprintln(w, loc.T("IconSize", map[string]any{"Size": j.Options.IconSize}))
	fmt.Fprintln(w, loc.T("Background", map[string]any{"Color": j.Background}))
	fmt.Fprintln(w, loc.T("Style", map[string]any{"Style": string(j.Options.Style)}))
	fmt.Fprintln(w, loc.T("Output", map[string]any{"Dir": j.OutDir}))
	fmt.Fprintln(w)

	src, err := icon.LoadSized(j.IconPath, j.Options.IconSize)
	if err != nil {
		return history.Run{}, err
	}
	frame, err := splash.Render(src, j.Options)
	if err != nil {
		return history.Run{}, err
	}
	if fi, err := os.Stat(j.OutDir); err != nil {
		return history.Run{}, fmt.Errorf("output directory: %w", err)
	} else if !fi.IsDir() {
		return history.Run{}, fmt.Errorf("output directory %s is not a directory", j.OutDir)
	}

	results, err := splash.WriteVariants(j.OutDir, frame, func(r splash.Result) {
		msg := loc.T("Written", map[string]any{"File": r.Name, "Size": humanize.Bytes(uint64(r.Bytes))})
		fmt.Fprintf(w, "%s %s\n", green("✓"), msg)
	})
	if err != nil {
		return history.Run{}, err
	}

	if j.Contents {
		changed, err := imageset.Write(j.OutDir, splash.Variants)
		if err != nil {
			return history.Run{}, err
		}
		if changed {
			fmt.Fprintf(w, "%s %s\n", green("✓"), loc.T("ContentsWritten", map[string]any{"File": imageset.FileName}))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, loc.T("Done", nil))
	fmt.Fprintln(w, rule)

	return history.Run{
		ID:         uuid.NewString(),
		Time:       time.Now(),
		IconPath:   j.IconPath,
		IconSize:   j.Options.IconSize,
		Style:      string(j.Options.Style),
		Background: j.Background,
		OutputDir:  j.OutDir,
		Files: lo.Map(results, func(r splash.Result, _ int) history.File {
			return history.File{Name: r.Name, Scale: r.Scale, Bytes: r.Bytes, SHA256: r.SHA256}
		}),
	}, nil
}

// report runs the best-effort follow-ups of a successful run. Failures are
// printed to stderr and never change the exit code.
func report(j job, run history.Run) {
	if j.Log {
		history.Log(run)
	}
	if !j.MQTT.Enabled() && j.Webhook.URL == "" {
		return
	}

	n := mqtt.Notice{
		RunID:     run.ID,
		Icon:      run.IconPath,
		Style:     run.Style,
		OutputDir: run.OutputDir,
		Files:     lo.Map(run.Files, func(f history.File, _ int) string { return f.Name }),
	}
	if j.MQTT.Enabled() {
		b := mqtt.Broker{
			URL:      j.MQTT.Broker,
			ClientID: j.MQTT.ClientID,
			Topic:    j.MQTT.Topic,
			QoS:      j.MQTT.QoS,
			Retain:   j.MQTT.Retain,
			Username: j.MQTT.Username,
			Password: j.MQTT.Password,
		}
		if err := mqtt.PublishNotice(b, n); err != nil {
			fmt.Fprintf(os.Stderr, "mqtt: %v\n", err)
		}
	}
	if j.Webhook.URL != "" {
		payload, err := n.Payload()
		if err == nil {
			err = webhook.Send(j.Webhook.URL, payload, j.Webhook.Headers)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}
}

func runGenerate(a cliArgs) {
	cwd, err := os.Getwd()
	if err != nil {
		fatal("%v", err)
	}
	root := paths.ProjectRoot(cwd)

	cfg, _, err := config.Load(a.configPath, root)
	if err != nil {
		fatal("%v", err)
	}

	j, err := buildJob(a, cfg, root)
	if err != nil {
		fatal("%v", err)
	}

	run, err := generate(j, os.Stdout)
	if err != nil {
		fatal("%v", err)
	}
	report(j, run)
}
