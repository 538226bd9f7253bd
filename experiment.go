package linktrace

//
// Driving the external benchmarking harness
//

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bassosimone/linktrace/internal/shellx"
	"github.com/google/shlex"
)

// ErrInvalidExperiment indicates that an [ExperimentConfig] is invalid.
var ErrInvalidExperiment = errors.New("linktrace: invalid experiment config")

// DefaultExperimentRuntime is the experiment runtime we use when
// [ExperimentConfig] does not specify one.
const DefaultExperimentRuntime = 60 * time.Second

// ExperimentConfig contains config for running a single experiment
// through the external benchmarking harness. Make sure you initialize
// all the fields marked as MANDATORY.
type ExperimentConfig struct {
	// Scheme is the MANDATORY congestion-control scheme to test.
	Scheme string

	// Profile is the MANDATORY link profile to emulate.
	Profile *LinkProfile

	// Runtime is the OPTIONAL experiment runtime. We use
	// [DefaultExperimentRuntime] when zero.
	Runtime time.Duration

	// DataDir is the MANDATORY directory where the harness should
	// write measurement results.
	DataDir string

	// TraceDir is the MANDATORY directory containing the capacity
	// traces. A missing trace is regenerated before running.
	TraceDir string

	// HarnessDir is the MANDATORY directory containing the harness
	// checkout, whose scripts live under src/.
	HarnessDir string

	// ExtraEmulatorArgs OPTIONALLY contains extra arguments to append
	// to the harness invocation, using shell quoting rules.
	ExtraEmulatorArgs string
}

// validate returns an error when a MANDATORY field is missing.
func (c *ExperimentConfig) validate() error {
	if c.Scheme == "" {
		return fmt.Errorf("%w: no scheme", ErrInvalidExperiment)
	}
	if c.Profile == nil {
		return fmt.Errorf("%w: no profile", ErrInvalidExperiment)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: no data dir", ErrInvalidExperiment)
	}
	if c.TraceDir == "" {
		return fmt.Errorf("%w: no trace dir", ErrInvalidExperiment)
	}
	if c.HarnessDir == "" {
		return fmt.Errorf("%w: no harness dir", ErrInvalidExperiment)
	}
	return nil
}

// runtimeSeconds returns the runtime to use in seconds.
func (c *ExperimentConfig) runtimeSeconds() int64 {
	runtime := c.Runtime
	if runtime <= 0 {
		runtime = DefaultExperimentRuntime
	}
	return int64(runtime / time.Second)
}

// TracePath returns the path of the capacity trace for the profile.
func (c *ExperimentConfig) TracePath() string {
	return filepath.Join(c.TraceDir, c.Profile.TraceFileName)
}

// testScript returns the path of the harness test script.
func (c *ExperimentConfig) testScript() string {
	return filepath.Join(c.HarnessDir, "src", "experiments", "test.py")
}

// setupScript returns the path of the harness setup script.
func (c *ExperimentConfig) setupScript() string {
	return filepath.Join(c.HarnessDir, "src", "experiments", "setup.py")
}

// TestArgv returns the harness argv that runs the experiment: the
// emulated link replays the profile's capacity trace in both
// directions, adds the profile's one-way delay, and bounds both
// queues to the bandwidth-delay product.
func (c *ExperimentConfig) TestArgv() ([]string, error) {
	queueBytes := c.Profile.QueueSizeBytes()
	argv := []string{
		c.testScript(),
		"--run-only",
		"--schemes", c.Scheme,
		"--data-dir", c.DataDir,
		"--runtime", strconv.FormatInt(c.runtimeSeconds(), 10),
		"--uplink-trace", c.TracePath(),
		"--downlink-trace", c.TracePath(),
		fmt.Sprintf("--extra-mm-cmd=mm-delay %d", c.Profile.OneWayDelay.Milliseconds()),
		fmt.Sprintf(
			"--extra-mm-link-args=--uplink-queue=droptail --uplink-queue-args=bytes=%d --downlink-queue=droptail --downlink-queue-args=bytes=%d",
			queueBytes, queueBytes,
		),
		"--pkill-cleanup", "local",
	}
	extra, err := shlex.Split(c.ExtraEmulatorArgs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExperiment, err.Error())
	}
	return append(argv, extra...), nil
}

// DryRunArgv returns the harness argv that checks whether the scheme
// is already set up without running anything.
func (c *ExperimentConfig) DryRunArgv() []string {
	return []string{
		c.testScript(),
		"--run-only",
		"--schemes", c.Scheme,
		"--dry-run",
	}
}

// SetupArgv returns the harness argv that sets up the scheme.
func (c *ExperimentConfig) SetupArgv() []string {
	return []string{
		c.setupScript(),
		"--schemes", c.Scheme,
	}
}

// RunExperiment runs a single experiment through the external
// benchmarking harness. We regenerate a missing capacity trace, set
// up the scheme through the harness when its dry run fails, and then
// run the experiment proper. We never retry: the operation is
// idempotent and rerunning is a caller decision.
func RunExperiment(ctx context.Context, logger Logger, config *ExperimentConfig) error {
	if err := config.validate(); err != nil {
		return err
	}
	for _, dir := range []string{config.DataDir, config.TraceDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("linktrace: creating %s: %w", dir, err)
		}
	}

	// regenerate the capacity trace when missing
	if _, err := os.Stat(config.TracePath()); errors.Is(err, fs.ErrNotExist) {
		logger.Infof("linktrace: generating %s", config.TracePath())
		spec := config.Profile.TraceSpec(DefaultDurationTicks)
		if err := WriteTraceFile(spec, config.TracePath()); err != nil {
			return err
		}
	}

	// set up the scheme through the harness when not yet available
	if err := runArgv(ctx, nil, config.DryRunArgv()); err != nil {
		logger.Infof("linktrace: scheme %s not set up, running harness setup", config.Scheme)
		if err := runArgv(ctx, logger, config.SetupArgv()); err != nil {
			return err
		}
	}

	argv, err := config.TestArgv()
	if err != nil {
		return err
	}
	return runArgv(ctx, logger, argv)
}

// runArgv executes the given argv, showing output when logger is not nil.
func runArgv(ctx context.Context, logger Logger, argv []string) error {
	shargv, err := shellx.NewArgv(argv[0], argv[1:]...)
	if err != nil {
		return err
	}
	config := &shellx.Config{}
	if logger != nil {
		config.Logger = logger
		config.Flags = shellx.FlagShowStdoutStderr
	}
	return shellx.RunEx(ctx, config, shargv, &shellx.Envp{})
}
