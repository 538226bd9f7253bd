package linktrace

//
// Constant-rate trace generation
//

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// TicksPerSecond is the number of trace ticks in one second. A tick
// lasts one millisecond and corresponds to a single trace line.
const TicksPerSecond = 1000

// DefaultDurationTicks is the default trace duration in ticks. It
// corresponds to sixty seconds of emulated link time.
const DefaultDurationTicks = 60000

// ErrInvalidTraceSpec indicates that a [TraceSpec] is invalid.
var ErrInvalidTraceSpec = errors.New("linktrace: invalid trace spec")

// ErrInvalidBitrate indicates that the bitrate is zero or negative.
var ErrInvalidBitrate = fmt.Errorf("%w: bitrate must be positive", ErrInvalidTraceSpec)

// ErrInvalidDuration indicates that the duration is zero or negative.
var ErrInvalidDuration = fmt.Errorf("%w: duration must be positive", ErrInvalidTraceSpec)

// TraceSpec describes a constant-rate link-capacity trace. The zero
// value is invalid; fill all the fields.
type TraceSpec struct {
	// BitrateBitsPerSec is the MANDATORY target bitrate of the
	// emulated link in bits per second.
	BitrateBitsPerSec int64

	// DurationTicks is the MANDATORY trace duration expressed in
	// ticks, i.e., in milliseconds of emulated link time.
	DurationTicks int64
}

// Validate returns an error when the spec is invalid.
func (spec TraceSpec) Validate() error {
	if spec.BitrateBitsPerSec <= 0 {
		return ErrInvalidBitrate
	}
	if spec.DurationTicks <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// BytesPerTick returns the per-tick byte budget for the spec's
// bitrate. The downstream emulator expects the historical truncating
// semantics, so we use integer division and round toward zero rather
// than to the nearest integer.
func (spec TraceSpec) BytesPerTick() int64 {
	return spec.BitrateBitsPerSec / 8 / TicksPerSecond
}

// WriteTo writes the trace to the given writer: one line per tick,
// each line the decimal byte budget, newline terminated. The output
// is a pure function of the spec, so equal specs always produce
// byte-identical traces.
func (spec TraceSpec) WriteTo(w io.Writer) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	line := strconv.FormatInt(spec.BytesPerTick(), 10)
	bw := bufio.NewWriter(w)
	for idx := int64(0); idx < spec.DurationTicks; idx++ {
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteTraceFile writes the trace described by spec to the given
// path, overwriting any previous file. We write to a temporary file
// in the destination directory and rename it into place on success,
// so a failed write never leaves a truncated trace behind.
func WriteTraceFile(spec TraceSpec, path string) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	filep, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("linktrace: creating %s: %w", tmpPath, err)
	}
	if err := spec.WriteTo(filep); err != nil {
		filep.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("linktrace: writing %s: %w", tmpPath, err)
	}
	if err := filep.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("linktrace: closing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("linktrace: renaming %s: %w", tmpPath, err)
	}
	return nil
}
