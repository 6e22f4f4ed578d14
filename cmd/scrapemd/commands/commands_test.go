package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/scrapemd/internal/output"
	"github.com/jmylchreest/scrapemd/pkg/cleaner"
	"github.com/jmylchreest/scrapemd/pkg/fetcher"
	"github.com/jmylchreest/scrapemd/pkg/scrapemd"
)

// testSettings parses args against a fresh flag set and viper instance.
func testSettings(t *testing.T, args ...string) (settings, error) {
	t.Helper()
	v := viper.New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addSettingsFlags(fs, v)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return loadSettings(v)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := testSettings(t)
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}

	def := scrapemd.DefaultConfig()
	if s.MaxChunkSize != def.MaxChunkSize || s.BatchSize != def.BatchSize || s.OutputDir != def.OutputDir {
		t.Errorf("pipeline defaults = %+v, want %+v", s.Config, def)
	}
	if s.DownloadTimeout != 10*time.Second || s.ProbeTimeout != 5*time.Second || s.FetchTimeout != 60*time.Second {
		t.Errorf("timeouts = %v/%v/%v", s.DownloadTimeout, s.ProbeTimeout, s.FetchTimeout)
	}
	if s.FetchMode != FetchDynamic || !s.Defang || s.NoClean {
		t.Errorf("mode/cleaning defaults = %q defang=%v noClean=%v", s.FetchMode, s.Defang, s.NoClean)
	}
	if s.UserAgent != fetcher.DefaultUserAgent {
		t.Errorf("UserAgent = %q", s.UserAgent)
	}
}

func TestLoadSettings_Flags(t *testing.T) {
	s, err := testSettings(t,
		"--max-chunk-size", "50KB",
		"--batch-size", "4",
		"--images-dir", "pics",
		"--fetch-mode", "STATIC",
		"--timeout", "15s",
		"--no-clean",
	)
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}
	if s.MaxChunkSize != 50000 || s.BatchSize != 4 || s.OutputDir != "pics" {
		t.Errorf("settings = %+v", s.Config)
	}
	if s.FetchMode != FetchStatic || s.FetchTimeout != 15*time.Second || !s.NoClean {
		t.Errorf("settings = %+v", s)
	}
}

func TestLoadSettings_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad size", []string{"--max-chunk-size", "lots"}},
		{"bad mode", []string{"--fetch-mode", "telepathy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testSettings(t, tt.args...)
			if !errors.Is(err, scrapemd.ErrInvalidConfig) {
				t.Errorf("loadSettings() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"100000", 100000, false},
		{" 2000 ", 2000, false},
		{"100KB", 100000, false},
		{"1KiB", 1024, false},
		{"1MB", 1000000, false},
		{"huge", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseSize(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestSettings_BrowserConfig(t *testing.T) {
	s, err := testSettings(t, "--settle-delay", "0", "--scroll-passes", "0", "--scroll-delay", "2s")
	if err != nil {
		t.Fatal(err)
	}
	bc := s.browserConfig()
	if bc.SettleDelay >= 0 || bc.ScrollPasses >= 0 {
		t.Errorf("zero settle/scroll should disable the step, got %v/%d", bc.SettleDelay, bc.ScrollPasses)
	}
	if bc.ScrollDelay != 2*time.Second || bc.Timeout != 60*time.Second {
		t.Errorf("browserConfig() = %+v", bc)
	}
}

func TestSettings_NewCleaner(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, "markdown"},
		{[]string{"--no-clean"}, "noop"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			s, err := testSettings(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if got := s.newCleaner().Name(); got != tt.want {
				t.Errorf("newCleaner().Name() = %q, want %q", got, tt.want)
			}
		})
	}

	s, _ := testSettings(t, "--defang=false")
	out, err := s.newCleaner().Clean("see https://example.com")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, cleaner.ZeroWidthJoiner) {
		t.Error("--defang=false should leave links intact")
	}
}

func TestSettings_NewFetcher(t *testing.T) {
	for _, mode := range []string{FetchStatic, FetchDynamic, FetchAuto} {
		t.Run(mode, func(t *testing.T) {
			s, err := testSettings(t, "--fetch-mode", mode)
			if err != nil {
				t.Fatal(err)
			}
			f, err := s.newFetcher()
			if err != nil {
				t.Fatalf("newFetcher() error = %v", err)
			}
			defer f.Close()
			if f.Type() != mode {
				t.Errorf("Type() = %q, want %q", f.Type(), mode)
			}
		})
	}
}

func TestRun_Markdown(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "page.html", `<html><head><title>Notes</title></head><body><p>hello</p></body></html>`)
	out := filepath.Join(dir, "notes.md")

	s, err := testSettings(t, "--fetch-mode", "static")
	if err != nil {
		t.Fatal(err)
	}
	res, err := run(context.Background(), job{source: src, outputFile: out, settings: s})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !res.Success || len(res.Output) != 1 || res.Output[0] != out || res.ImageCount != nil {
		t.Fatalf("run() = %+v", res)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Notes\n\n") || !strings.Contains(string(data), "hello") {
		t.Errorf("unexpected markdown:\n%s", data)
	}
}

func TestRun_MarkdownParts(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "<p>paragraph number %d with some filler text</p>", i)
	}
	sb.WriteString("</body></html>")
	src := writeFile(t, dir, "page.html", sb.String())
	out := filepath.Join(dir, "notes.md")

	s, err := testSettings(t, "--fetch-mode", "static", "--max-chunk-size", "400")
	if err != nil {
		t.Fatal(err)
	}
	res, err := run(context.Background(), job{source: src, outputFile: out, settings: s})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if len(res.Output) < 2 {
		t.Fatalf("expected several parts, got %v", res.Output)
	}
	for i, name := range res.Output {
		if want := filepath.Join(dir, fmt.Sprintf("notes_part%d.md", i+1)); name != want {
			t.Errorf("Output[%d] = %q, want %q", i, name, want)
		}
	}
}

func TestRun_Images(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&sb, `<img src="%s/img%d.png" alt="image %d">`, srv.URL, i, i)
	}
	sb.WriteString("</body></html>")
	src := writeFile(t, dir, "gallery.html", sb.String())
	out := filepath.Join(dir, "gallery.md")

	s, err := testSettings(t, "--fetch-mode", "static", "--batch-size", "2",
		"--images-dir", filepath.Join(dir, "images"))
	if err != nil {
		t.Fatal(err)
	}
	res, err := run(context.Background(), job{source: src, outputFile: out, images: true, settings: s})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if res.ImageCount == nil || *res.ImageCount != 5 {
		t.Fatalf("ImageCount = %v, want 5", res.ImageCount)
	}
	if len(res.Output) != 3 || res.Output[2] != filepath.Join(dir, "gallery_images_batch3.json") {
		t.Errorf("Output = %v", res.Output)
	}
}

func TestRun_MissingSource(t *testing.T) {
	s, err := testSettings(t, "--fetch-mode", "static")
	if err != nil {
		t.Fatal(err)
	}
	_, err = run(context.Background(), job{
		source:     filepath.Join(t.TempDir(), "missing.html"),
		outputFile: "unused.md",
		settings:   s,
	})
	if ExitCode(err) != ExitIO {
		t.Errorf("ExitCode(%v) = %d, want %d", err, ExitCode(err), ExitIO)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	s, err := testSettings(t, "--fetch-mode", "static", "--batch-size", "0")
	if err != nil {
		t.Fatal(err)
	}
	_, err = run(context.Background(), job{source: "x.html", outputFile: "x.md", settings: s})
	if ExitCode(err) != ExitUsage {
		t.Errorf("ExitCode(%v) = %d, want %d", err, ExitCode(err), ExitUsage)
	}
}

func TestReport(t *testing.T) {
	buf := &bytes.Buffer{}
	err := report(buf, output.Result{}, errors.New("page exploded"))
	if err == nil {
		t.Fatal("report() should pass the error through")
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("stdout is not one JSON object: %v\n%s", err, buf.String())
	}
	if got["success"] != false || got["error"] != "page exploded" || len(got) != 2 {
		t.Errorf("report() printed %v", got)
	}
	if Status(err) != ExitSuccess {
		t.Errorf("Status() = %d for a printed failure, want %d", Status(err), ExitSuccess)
	}
}

func TestReport_Success(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := report(buf, output.Success([]string{"a.md"}), nil); err != nil {
		t.Fatalf("report() error = %v", err)
	}
	if buf.String() != `{"success":true,"output":["a.md"]}`+"\n" {
		t.Errorf("report() printed %q", buf.String())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"fetch", fmt.Errorf("x: %w", fetcher.ErrFetch), ExitFetch},
		{"source", fmt.Errorf("x: %w", fetcher.ErrUnsupportedSource), ExitIO},
		{"not exist", fmt.Errorf("x: %w", os.ErrNotExist), ExitIO},
		{"config", fmt.Errorf("x: %w", scrapemd.ErrInvalidConfig), ExitUsage},
		{"usage", fmt.Errorf("%w: bad args", ErrUsage), ExitUsage},
		{"reported fetch", &reportedError{err: fetcher.ErrFetch}, ExitFetch},
		{"other", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestExecute_Convert(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "page.html", `<html><body><p>hi</p></body></html>`)
	out := filepath.Join(dir, "out.md")

	stdout, err := execute(t, src, out, "--fetch-mode", "static", "--quiet")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := fmt.Sprintf(`{"success":true,"output":[%q]}`+"\n", out)
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestExecute_Failure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.html")

	stdout, err := execute(t, missing, "--fetch-mode", "static", "--quiet")
	if err == nil {
		t.Fatal("Execute() should return the failure")
	}
	if Status(err) != ExitSuccess {
		t.Errorf("Status(%v) = %d, want %d", err, Status(err), ExitSuccess)
	}
	if ExitCode(err) != ExitIO {
		t.Errorf("ExitCode(%v) = %d, want %d", err, ExitCode(err), ExitIO)
	}
	if strings.Count(stdout, "\n") != 1 || !strings.HasPrefix(stdout, `{"success":false,"error":`) {
		t.Errorf("stdout = %q, want a single failure object", stdout)
	}
}

func TestExecute_FailureWithExitCode(t *testing.T) {
	t.Cleanup(func() { _ = rootCmd.PersistentFlags().Set("exit-code", "false") })
	missing := filepath.Join(t.TempDir(), "missing.html")

	stdout, err := execute(t, missing, "--fetch-mode", "static", "--quiet", "--exit-code")
	if Status(err) != ExitIO {
		t.Errorf("Status(%v) = %d, want %d", err, Status(err), ExitIO)
	}
	if !strings.HasPrefix(stdout, `{"success":false,"error":`) {
		t.Errorf("stdout = %q, want a failure object", stdout)
	}
}

func TestExecute_UsageErrors(t *testing.T) {
	src := writeFile(t, t.TempDir(), "page.html", `<p>hi</p>`)

	tests := []struct {
		name string
		args []string
	}{
		{"too many arguments", []string{src, "out.md", "extra", "--quiet"}},
		{"unknown flag", []string{src, "--no-such-flag", "--quiet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, err := execute(t, tt.args...)
			if ExitCode(err) != ExitUsage {
				t.Errorf("ExitCode(%v) = %d, want %d", err, ExitCode(err), ExitUsage)
			}
			if Status(err) != ExitSuccess {
				t.Errorf("Status(%v) = %d, want %d", err, Status(err), ExitSuccess)
			}

			var got map[string]any
			if jerr := json.Unmarshal([]byte(stdout), &got); jerr != nil {
				t.Fatalf("stdout is not one JSON object: %v\n%s", jerr, stdout)
			}
			msg, _ := got["error"].(string)
			if got["success"] != false || !strings.HasPrefix(msg, "invalid usage: ") {
				t.Errorf("stdout = %v, want a usage failure", got)
			}
		})
	}
}

func TestExecute_Config(t *testing.T) {
	stdout, err := execute(t, "config", "--batch-size", "7", "--fetch-mode", "static")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{"batch_size: 7", "fetch_mode: static", "max_chunk_size: 100000", "download_timeout: 10s"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config output missing %q:\n%s", want, stdout)
		}
	}
}
