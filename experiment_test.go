package linktrace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bassosimone/linktrace/internal/shellx"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/sys/execabs"
)

func TestExperimentConfigTestArgv(t *testing.T) {
	t.Run("with the low-latency profile", func(t *testing.T) {
		config := &ExperimentConfig{
			Scheme:     SchemeCubic,
			Profile:    LowLatencyProfile,
			DataDir:    "data",
			TraceDir:   "traces",
			HarnessDir: "pantheon",
		}
		argv, err := config.TestArgv()
		if err != nil {
			t.Fatal(err)
		}
		expect := []string{
			filepath.Join("pantheon", "src", "experiments", "test.py"),
			"--run-only",
			"--schemes", "cubic",
			"--data-dir", "data",
			"--runtime", "60",
			"--uplink-trace", filepath.Join("traces", "50mbps.trace"),
			"--downlink-trace", filepath.Join("traces", "50mbps.trace"),
			"--extra-mm-cmd=mm-delay 10",
			"--extra-mm-link-args=--uplink-queue=droptail --uplink-queue-args=bytes=62500 " +
				"--downlink-queue=droptail --downlink-queue-args=bytes=62500",
			"--pkill-cleanup", "local",
		}
		if diff := cmp.Diff(expect, argv); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("with a custom runtime and extra arguments", func(t *testing.T) {
		config := &ExperimentConfig{
			Scheme:            SchemeBBR,
			Profile:           HighLatencyProfile,
			Runtime:           30 * time.Second,
			DataDir:           "data",
			TraceDir:          "traces",
			HarnessDir:        "pantheon",
			ExtraEmulatorArgs: `--flows 2 --note "two flows"`,
		}
		argv, err := config.TestArgv()
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Contains(argv, "--runtime") || !slices.Contains(argv, "30") {
			t.Fatal("missing custom runtime in", argv)
		}
		if !slices.Contains(argv, "--flows") || !slices.Contains(argv, "two flows") {
			t.Fatal("missing extra arguments in", argv)
		}
		queueArgs := "--extra-mm-link-args=--uplink-queue=droptail --uplink-queue-args=bytes=25000 " +
			"--downlink-queue=droptail --downlink-queue-args=bytes=25000"
		if !slices.Contains(argv, queueArgs) {
			t.Fatal("missing queue arguments in", argv)
		}
	})

	t.Run("with unbalanced quoting in the extra arguments", func(t *testing.T) {
		config := &ExperimentConfig{
			Scheme:            SchemeBBR,
			Profile:           HighLatencyProfile,
			DataDir:           "data",
			TraceDir:          "traces",
			HarnessDir:        "pantheon",
			ExtraEmulatorArgs: `--note "unterminated`,
		}
		argv, err := config.TestArgv()
		if !errors.Is(err, ErrInvalidExperiment) {
			t.Fatal("unexpected error", err)
		}
		if argv != nil {
			t.Fatal("expected nil argv")
		}
	})
}

func TestExperimentConfigValidate(t *testing.T) {

	// testcase describes an invalid config
	type testcase struct {
		// name is the name of this test case
		name string

		// config is the invalid config
		config *ExperimentConfig
	}

	var testcases = []testcase{{
		name:   "without a scheme",
		config: &ExperimentConfig{Profile: LowLatencyProfile, DataDir: "d", TraceDir: "t", HarnessDir: "h"},
	}, {
		name:   "without a profile",
		config: &ExperimentConfig{Scheme: "cubic", DataDir: "d", TraceDir: "t", HarnessDir: "h"},
	}, {
		name:   "without a data dir",
		config: &ExperimentConfig{Scheme: "cubic", Profile: LowLatencyProfile, TraceDir: "t", HarnessDir: "h"},
	}, {
		name:   "without a trace dir",
		config: &ExperimentConfig{Scheme: "cubic", Profile: LowLatencyProfile, DataDir: "d", HarnessDir: "h"},
	}, {
		name:   "without a harness dir",
		config: &ExperimentConfig{Scheme: "cubic", Profile: LowLatencyProfile, DataDir: "d", TraceDir: "t"},
	}}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			err := RunExperiment(context.Background(), &NullLogger{}, tc.config)
			if !errors.Is(err, ErrInvalidExperiment) {
				t.Fatal("unexpected error", err)
			}
		})
	}
}

// fakeShellxDeps is a [shellx.Dependencies] recording the commands
// that the experiment runner would execute.
type fakeShellxDeps struct {
	// commands contains the argv of each executed command
	commands [][]string

	// dryRunError is the error returned by the dry-run command
	dryRunError error
}

// CmdOutput implements shellx.Dependencies
func (d *fakeShellxDeps) CmdOutput(c *execabs.Cmd) ([]byte, error) {
	d.commands = append(d.commands, c.Args)
	return nil, nil
}

// CmdRun implements shellx.Dependencies
func (d *fakeShellxDeps) CmdRun(c *execabs.Cmd) error {
	d.commands = append(d.commands, c.Args)
	if d.dryRunError != nil && slices.Contains(c.Args, "--dry-run") {
		return d.dryRunError
	}
	return nil
}

// LookPath implements shellx.Dependencies
func (d *fakeShellxDeps) LookPath(file string) (string, error) {
	return file, nil
}

func TestRunExperiment(t *testing.T) {
	newConfig := func(t *testing.T) *ExperimentConfig {
		dirname := t.TempDir()
		return &ExperimentConfig{
			Scheme:     SchemeCubic,
			Profile:    HighLatencyProfile,
			DataDir:    filepath.Join(dirname, "data"),
			TraceDir:   filepath.Join(dirname, "traces"),
			HarnessDir: filepath.Join(dirname, "pantheon"),
		}
	}

	t.Run("when the scheme is already set up", func(t *testing.T) {
		deps := &fakeShellxDeps{}
		saved := shellx.Library
		shellx.Library = deps
		defer func() { shellx.Library = saved }()

		config := newConfig(t)
		if err := RunExperiment(context.Background(), &NullLogger{}, config); err != nil {
			t.Fatal(err)
		}

		// we expect the dry run followed by the experiment proper
		if len(deps.commands) != 2 {
			t.Fatal("expected 2 commands, got", len(deps.commands))
		}
		if !slices.Contains(deps.commands[0], "--dry-run") {
			t.Fatal("expected a dry run first, got", deps.commands[0])
		}
		if !strings.HasSuffix(deps.commands[1][0], "test.py") {
			t.Fatal("expected the test script, got", deps.commands[1][0])
		}

		// the missing capacity trace must have been regenerated
		data, err := os.ReadFile(config.TracePath())
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(data), "125\n") {
			t.Fatal("unexpected trace content")
		}
	})

	t.Run("when the scheme is not set up", func(t *testing.T) {
		deps := &fakeShellxDeps{dryRunError: errors.New("mocked error")}
		saved := shellx.Library
		shellx.Library = deps
		defer func() { shellx.Library = saved }()

		config := newConfig(t)
		if err := RunExperiment(context.Background(), &NullLogger{}, config); err != nil {
			t.Fatal(err)
		}

		// we expect the failing dry run, then setup, then the experiment
		if len(deps.commands) != 3 {
			t.Fatal("expected 3 commands, got", len(deps.commands))
		}
		if !strings.HasSuffix(deps.commands[1][0], "setup.py") {
			t.Fatal("expected the setup script, got", deps.commands[1][0])
		}
		if !strings.HasSuffix(deps.commands[2][0], "test.py") {
			t.Fatal("expected the test script, got", deps.commands[2][0])
		}
	})
}
