package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ogadix/splash/internal/config"
	"github.com/ogadix/splash/internal/history"
	"github.com/ogadix/splash/internal/i18n"
	"github.com/ogadix/splash/internal/icon"
	"github.com/ogadix/splash/internal/imageset"
	"github.com/ogadix/splash/internal/paths"
	"github.com/ogadix/splash/internal/splash"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want cliArgs
	}{
		{
			name: "icon only",
			args: []string{"icon.png"},
			want: cliArgs{positional: []string{"icon.png"}},
		},
		{
			name: "icon and size",
			args: []string{"icon.png", "768"},
			want: cliArgs{positional: []string{"icon.png", "768"}},
		},
		{
			name: "all options",
			args: []string{"-r", "-o", "out", "-b", "#000", "--lang", "ja", "-c", "cfg.json", "--contents", "--log", "icon.png"},
			want: cliArgs{rounded: true, outDir: "out", color: "#000", lang: "ja", configPath: "cfg.json", contents: true, log: true, positional: []string{"icon.png"}},
		},
		{
			name: "options after positionals",
			args: []string{"icon.png", "512", "--style", "rounded"},
			want: cliArgs{style: "rounded", positional: []string{"icon.png", "512"}},
		},
		{
			name: "negative size stays positional",
			args: []string{"icon.png", "-5"},
			want: cliArgs{positional: []string{"icon.png", "-5"}},
		},
		{
			name: "double dash",
			args: []string{"--", "-weird.png"},
			want: cliArgs{positional: []string{"-weird.png"}},
		},
		{
			name: "help flag",
			args: []string{"--help"},
			want: cliArgs{positional: []string{"--help"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args)
			if err != nil {
				t.Fatalf("parseArgs: %v", err)
			}
			if got.configPath != tt.want.configPath || got.outDir != tt.want.outDir ||
				got.color != tt.want.color || got.style != tt.want.style || got.lang != tt.want.lang ||
				got.rounded != tt.want.rounded || got.contents != tt.want.contents || got.log != tt.want.log {
				t.Errorf("parseArgs(%v) = %+v, want %+v", tt.args, got, tt.want)
			}
			if strings.Join(got.positional, "|") != strings.Join(tt.want.positional, "|") {
				t.Errorf("positional = %v, want %v", got.positional, tt.want.positional)
			}
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"icon.png", "-o"},
		{"--color"},
		{"--unknown", "icon.png"},
	} {
		if _, err := parseArgs(args); err == nil {
			t.Errorf("parseArgs(%v): expected error", args)
		}
	}
}

func TestBuildJobDefaults(t *testing.T) {
	root := t.TempDir()
	j, err := buildJob(cliArgs{positional: []string{"icon.png"}}, config.Default(), root)
	if err != nil {
		t.Fatal(err)
	}
	if j.Options.IconSize != splash.DefaultIconSize {
		t.Errorf("IconSize = %d, want %d", j.Options.IconSize, splash.DefaultIconSize)
	}
	if j.Options.Style != splash.StylePlain {
		t.Errorf("Style = %q, want plain", j.Options.Style)
	}
	if j.Options.Background != splash.DefaultBackground {
		t.Errorf("Background = %v", j.Options.Background)
	}
	if j.Background != "#8b5cf6" {
		t.Errorf("Background hex = %q", j.Background)
	}
	if j.OutDir != paths.OutputDir(root) {
		t.Errorf("OutDir = %q, want %q", j.OutDir, paths.OutputDir(root))
	}
	if j.Contents || j.Log || j.MQTT.Enabled() {
		t.Errorf("optional features enabled by default: %+v", j)
	}
}

func TestBuildJobPriority(t *testing.T) {
	cfg := config.Default()
	cfg.BackgroundColor = "#000000"
	cfg.IconSize = 512
	cfg.OutputDir = "/from/config"
	cfg.Language = "ja"
	cfg.Log = true

	// Config values apply when the command line is silent.
	j, err := buildJob(cliArgs{positional: []string{"icon.png"}}, cfg, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if j.Options.IconSize != 512 || j.Background != "#000000" || j.OutDir != "/from/config" || j.Lang != "ja" || !j.Log {
		t.Errorf("config not applied: %+v", j)
	}

	// The command line wins over the config file.
	a := cliArgs{
		color:      "#FFFFFF",
		outDir:     "/from/cli",
		lang:       "en",
		rounded:    true,
		positional: []string{"icon.png", "256"},
	}
	j, err = buildJob(a, cfg, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if j.Options.IconSize != 256 {
		t.Errorf("IconSize = %d, want 256", j.Options.IconSize)
	}
	if j.Background != "#ffffff" || j.Options.Background != (color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Errorf("Background = %q %v", j.Background, j.Options.Background)
	}
	if j.OutDir != "/from/cli" || j.Lang != "en" {
		t.Errorf("OutDir/Lang = %q/%q", j.OutDir, j.Lang)
	}
	if j.Options.Style != splash.StyleRounded {
		t.Errorf("Style = %q, want rounded", j.Options.Style)
	}
}

func TestBuildJobInvalidSize(t *testing.T) {
	for _, size := range []string{"0", "-3", "abc", "1.5"} {
		_, err := buildJob(cliArgs{positional: []string{"icon.png", size}}, config.Default(), t.TempDir())
		if !errors.Is(err, icon.ErrInvalidSize) {
			t.Errorf("size %q: err = %v, want ErrInvalidSize", size, err)
		}
	}
}

func TestBuildJobRejects(t *testing.T) {
	tests := []struct {
		name string
		args cliArgs
	}{
		{"no icon", cliArgs{}},
		{"too many positionals", cliArgs{positional: []string{"a.png", "1", "2"}}},
		{"bad color", cliArgs{color: "purple", positional: []string{"icon.png"}}},
		{"bad style", cliArgs{style: "square", positional: []string{"icon.png"}}},
		{"rounded conflicts with plain", cliArgs{rounded: true, style: "plain", positional: []string{"icon.png"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := buildJob(tt.args, config.Default(), t.TempDir()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBuildJobAcceptsIconLargerThanCanvas(t *testing.T) {
	j, err := buildJob(cliArgs{positional: []string{"icon.png", "3000"}}, config.Default(), t.TempDir())
	if err != nil {
		t.Fatalf("buildJob: %v", err)
	}
	if j.Options.IconSize != 3000 {
		t.Errorf("IconSize = %d, want 3000", j.Options.IconSize)
	}
}

// writeIcon saves a size×size opaque PNG and returns its path.
func writeIcon(t *testing.T, size int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: 0x80, A: 0xff})
		}
	}
	p := filepath.Join(t.TempDir(), "icon.png")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return p
}

// smallJob returns a job rendering onto a 256px canvas so tests stay fast.
func smallJob(t *testing.T, iconPath, out string) job {
	t.Helper()
	j, err := buildJob(cliArgs{lang: "en", outDir: out, positional: []string{iconPath, "64"}}, config.Default(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	j.Options.CanvasSize = 256
	return j
}

func TestGenerateWritesVariants(t *testing.T) {
	out := t.TempDir()
	j := smallJob(t, writeIcon(t, 64), out)

	var buf bytes.Buffer
	run, err := generate(j, &buf)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var first []byte
	for i, v := range splash.Variants {
		data, err := os.ReadFile(filepath.Join(out, v.Name))
		if err != nil {
			t.Fatalf("%s not written: %v", v.Name, err)
		}
		if i == 0 {
			first = data
		} else if !bytes.Equal(data, first) {
			t.Errorf("%s differs from %s", v.Name, splash.Variants[0].Name)
		}
	}

	img, err := png.Decode(bytes.NewReader(first))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
		t.Errorf("frame = %v, want 256x256", b)
	}
	if got := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA); got != splash.DefaultBackground {
		t.Errorf("corner = %v, want background", got)
	}

	if len(run.Files) != 3 || run.ID == "" || run.IconSize != 64 || run.OutputDir != out {
		t.Errorf("run = %+v", run)
	}

	text := buf.String()
	for _, want := range []string{"Icon size: 64x64", "Background: #8b5cf6", "Splash screens generated!"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if got := strings.Count(text, "✓"); got != 3 {
		t.Errorf("output has %d check marks, want 3", got)
	}
	if _, err := os.Stat(filepath.Join(out, imageset.FileName)); !os.IsNotExist(err) {
		t.Error("Contents.json written without --contents")
	}
}

func TestGenerateCropsOversizedIcon(t *testing.T) {
	out := t.TempDir()
	j := smallJob(t, writeIcon(t, 64), out)
	j.Options.IconSize = 300

	if _, err := generate(j, &bytes.Buffer{}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, v := range splash.Variants {
		f, err := os.Open(filepath.Join(out, v.Name))
		if err != nil {
			t.Fatalf("%s not written: %v", v.Name, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatal(err)
		}
		if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
			t.Errorf("%s: frame = %v, want 256x256", v.Name, b)
		}
		// The icon covers the whole canvas, so no background shows.
		if got := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA); got == splash.DefaultBackground {
			t.Errorf("%s: corner shows the background, want cropped icon", v.Name)
		}
	}
}

func TestGenerateJapanese(t *testing.T) {
	j := smallJob(t, writeIcon(t, 64), t.TempDir())
	j.Lang = "ja"

	var buf bytes.Buffer
	if _, err := generate(j, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "スプラッシュスクリーンを生成しました！") {
		t.Errorf("output not localized:\n%s", buf.String())
	}
}

func TestGenerateContents(t *testing.T) {
	out := t.TempDir()
	j := smallJob(t, writeIcon(t, 64), out)
	j.Contents = true

	var buf bytes.Buffer
	if _, err := generate(j, &buf); err != nil {
		t.Fatal(err)
	}
	c, err := imageset.Read(out)
	if err != nil {
		t.Fatalf("Contents.json: %v", err)
	}
	if len(c.Images) != len(splash.Variants) {
		t.Errorf("Contents.json lists %d images", len(c.Images))
	}
	if got := strings.Count(buf.String(), "✓"); got != 4 {
		t.Errorf("output has %d check marks, want 4", got)
	}
}

func TestGenerateMissingIconWritesNothing(t *testing.T) {
	out := t.TempDir()
	j := smallJob(t, filepath.Join(t.TempDir(), "missing.png"), out)

	_, err := generate(j, &bytes.Buffer{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Errorf("output dir has %d entries after failure", len(entries))
	}
}

func TestGenerateMissingOutputDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ios", "App")
	j := smallJob(t, writeIcon(t, 64), out)

	if _, err := generate(j, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for missing output directory")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output directory was created")
	}
}

func TestPrintRuns(t *testing.T) {
	loc := i18n.New("en")

	var buf bytes.Buffer
	printRuns(&buf, nil, loc)
	if !strings.Contains(buf.String(), "No history recorded") {
		t.Errorf("empty history = %q", buf.String())
	}

	buf.Reset()
	printRuns(&buf, []history.Run{{
		ID:        "x",
		Time:      time.Now().Add(-time.Hour),
		IconPath:  "resources/icon.png",
		IconSize:  1024,
		Style:     "rounded",
		OutputDir: "/out",
		Files:     []history.File{{Name: "a", Bytes: 1000}, {Name: "b", Bytes: 1000}, {Name: "c", Bytes: 1000}},
	}}, loc)
	text := buf.String()
	for _, want := range []string{"resources/icon.png", "1024px", "3 files", "3.0 kB", "hour ago"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestReportPostsWebhookNotice(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &got)
	}))
	defer srv.Close()

	t.Setenv("SPLASH_TEST_TOKEN", "abc")
	j := job{Webhook: config.Webhook{URL: srv.URL, Headers: map[string]string{"Authorization": "Bearer $SPLASH_TEST_TOKEN"}}}
	run := history.Run{
		ID:        "run-1",
		IconPath:  "icon.png",
		Style:     "plain",
		OutputDir: "/out",
		Files:     []history.File{{Name: "splash-2732x2732-2.png"}, {Name: "splash-2732x2732-1.png"}, {Name: "splash-2732x2732.png"}},
	}
	report(j, run)

	if got["run_id"] != "run-1" || got["output_dir"] != "/out" {
		t.Errorf("notice = %v", got)
	}
	if files, ok := got["files"].([]any); !ok || len(files) != 3 || files[2] != "splash-2732x2732.png" {
		t.Errorf("files = %v", got["files"])
	}
	if auth != "Bearer abc" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestCleanHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	now := time.Now()

	if n, err := cleanHistory(path, 7, now); err != nil || n != 0 {
		t.Fatalf("cleanHistory on missing db = %d, %v; want 0, nil", n, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("cleanHistory created the database")
	}

	s, err := history.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	for id, at := range map[string]time.Time{
		"old":    now.AddDate(0, 0, -30),
		"recent": now.AddDate(0, 0, -1),
	} {
		if err := s.Record(history.Run{ID: id, Time: at, IconPath: "icon.png", Style: "plain"}); err != nil {
			t.Fatal(err)
		}
	}
	s.Close()

	n, err := cleanHistory(path, 7, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("removed %d runs, want 1", n)
	}

	s, err = history.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	runs, _ := s.Runs(0)
	if len(runs) != 1 || runs[0].ID != "recent" {
		t.Errorf("remaining runs = %+v", runs)
	}
}
