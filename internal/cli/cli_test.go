package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/peoplepack/pkg/errors"
	"github.com/matzehuels/peoplepack/pkg/observability"
)

func TestRootCommandRegistersCommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	sort.Strings(got)
	want := []string{"cache", "completion", "config", "explore", "export", "layout", "orgchart", "render", "serve"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Cleanup(observability.Reset)
	c := New(io.Discard, LogInfo)
	c.configPath = writeConfig(t, `
[layout]
weight_by = "hours"
catch_all = "Everyone else"

[render]
marker = "!"
`)
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	opts := c.pipelineOptions()
	if opts.WeightBy != "hours" || opts.CatchAll != "Everyone else" || opts.Marker != "!" {
		t.Errorf("options = %+v", opts)
	}
	if opts.SubCatchAll != "General" {
		t.Errorf("unset keys should keep defaults, got sub catch-all %q", opts.SubCatchAll)
	}
	if opts.Measurer == nil {
		t.Error("options should carry a text measurer")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.configPath = writeConfig(t, "[layout]\nbogus = 1\n")

	err := c.loadConfig()
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestLayoutFlagsApply(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantWidth  float64
		wantHeight float64
		wantMargin float64
		wantMarker string
	}{
		{"defaults", nil, 1200, 960, 10, "★"},
		{"narrow keeps min height", []string{"--width", "500"}, 500, 800, 10, "★"},
		{"explicit height", []string{"--width", "500", "--height", "300"}, 500, 300, 10, "★"},
		{"overrides", []string{"--margin", "4", "--marker", "*"}, 1200, 960, 4, "*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(io.Discard, LogInfo)
			var flags layoutFlags
			cmd := &cobra.Command{Use: "test"}
			flags.register(cmd)
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatal(err)
			}

			opts := c.pipelineOptions()
			flags.apply(cmd, c, &opts)
			if opts.Width != tt.wantWidth || opts.Height != tt.wantHeight {
				t.Errorf("size = %vx%v, want %vx%v", opts.Width, opts.Height, tt.wantWidth, tt.wantHeight)
			}
			if opts.Margin != tt.wantMargin || opts.Marker != tt.wantMarker {
				t.Errorf("margin=%v marker=%q", opts.Margin, opts.Marker)
			}
			if opts.WeightBy != "members" {
				t.Errorf("unset --weight-by should keep config value, got %q", opts.WeightBy)
			}
		})
	}
}

func TestOpenSourceRequiresPath(t *testing.T) {
	c := New(io.Discard, LogInfo)
	_, err := c.openSource(context.Background(), "")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestOpenSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.yaml")
	if err := os.WriteFile(path, []byte("people:\n  - id: a\n    name: Ada\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name string
		arg  string
		cfg  string
	}{
		{"argument", path, ""},
		{"config path", "", path},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := New(io.Discard, LogInfo)
			c.Config.Source.Path = tc.cfg

			src, err := c.openSource(context.Background(), tc.arg)
			if err != nil {
				t.Fatalf("openSource: %v", err)
			}
			defer src.Close()
			if src.roster == nil {
				t.Fatal("file source should expose the roster for watching")
			}
			snap, err := src.Snapshot(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if len(snap.People) != 1 || snap.People[0].Name != "Ada" {
				t.Errorf("people = %+v", snap.People)
			}
		})
	}
}
