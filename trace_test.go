package linktrace

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTraceSpecBytesPerTick(t *testing.T) {

	// testcase describes a test case for [TraceSpec.BytesPerTick]
	type testcase struct {
		// name is the name of this test case
		name string

		// bitrate is the bitrate in bits per second
		bitrate int64

		// expect is the expected per-tick byte budget
		expect int64
	}

	var testcases = []testcase{{
		name:    "50 Mbit/s",
		bitrate: 50_000_000,
		expect:  6250,
	}, {
		name:    "1 Mbit/s",
		bitrate: 1_000_000,
		expect:  125,
	}, {
		name:    "exactly one byte per tick",
		bitrate: 8000,
		expect:  1,
	}, {
		name:    "less than one byte per tick truncates to zero",
		bitrate: 7999,
		expect:  0,
	}, {
		name:    "fractional bytes truncate toward zero",
		bitrate: 12_345,
		expect:  1,
	}}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			spec := TraceSpec{
				BitrateBitsPerSec: tc.bitrate,
				DurationTicks:     1,
			}
			if got := spec.BytesPerTick(); got != tc.expect {
				t.Fatal("expected", tc.expect, "got", got)
			}
		})
	}
}

func TestTraceSpecWriteTo(t *testing.T) {

	// testcase describes a test case for [TraceSpec.WriteTo]
	type testcase struct {
		// name is the name of this test case
		name string

		// spec is the trace spec to write
		spec TraceSpec

		// expectErr is the expected error, or nil
		expectErr error

		// expect is the expected output
		expect string
	}

	var testcases = []testcase{{
		name: "three ticks at two bytes per tick",
		spec: TraceSpec{
			BitrateBitsPerSec: 16_000,
			DurationTicks:     3,
		},
		expectErr: nil,
		expect:    "2\n2\n2\n",
	}, {
		name: "sub-byte bitrate yields zero lines",
		spec: TraceSpec{
			BitrateBitsPerSec: 4000,
			DurationTicks:     2,
		},
		expectErr: nil,
		expect:    "0\n0\n",
	}, {
		name: "zero bitrate",
		spec: TraceSpec{
			BitrateBitsPerSec: 0,
			DurationTicks:     3,
		},
		expectErr: ErrInvalidBitrate,
		expect:    "",
	}, {
		name: "negative bitrate",
		spec: TraceSpec{
			BitrateBitsPerSec: -1,
			DurationTicks:     3,
		},
		expectErr: ErrInvalidBitrate,
		expect:    "",
	}, {
		name: "zero duration",
		spec: TraceSpec{
			BitrateBitsPerSec: 16_000,
			DurationTicks:     0,
		},
		expectErr: ErrInvalidDuration,
		expect:    "",
	}}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			buffer := &bytes.Buffer{}
			err := tc.spec.WriteTo(buffer)
			if !errors.Is(err, tc.expectErr) {
				t.Fatal("unexpected error", err)
			}
			if diff := cmp.Diff(tc.expect, buffer.String()); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestWriteTraceFileReferenceTraces(t *testing.T) {

	// testcase describes a reference trace scenario
	type testcase struct {
		// name is the name of this test case
		name string

		// bitrate is the bitrate in bits per second
		bitrate int64

		// expectLine is the value expected on every line
		expectLine string
	}

	var testcases = []testcase{{
		name:       "50mbps.trace",
		bitrate:    50_000_000,
		expectLine: "6250",
	}, {
		name:       "1mbps.trace",
		bitrate:    1_000_000,
		expectLine: "125",
	}}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			spec := TraceSpec{
				BitrateBitsPerSec: tc.bitrate,
				DurationTicks:     DefaultDurationTicks,
			}
			path := filepath.Join(t.TempDir(), tc.name)
			if err := WriteTraceFile(spec, path); err != nil {
				t.Fatal(err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			// the file must be newline terminated with no
			// trailing blank line beyond the last entry
			if !strings.HasSuffix(string(data), tc.expectLine+"\n") {
				t.Fatal("missing newline termination")
			}
			lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
			if len(lines) != DefaultDurationTicks {
				t.Fatal("expected", DefaultDurationTicks, "lines, got", len(lines))
			}
			for _, line := range lines {
				if line != tc.expectLine {
					t.Fatal("expected", tc.expectLine, "got", line)
				}
			}
		})
	}
}

func TestWriteTraceFileIsDeterministic(t *testing.T) {
	spec := TraceSpec{
		BitrateBitsPerSec: 50_000_000,
		DurationTicks:     DefaultDurationTicks,
	}
	dirname := t.TempDir()
	first := filepath.Join(dirname, "first.trace")
	second := filepath.Join(dirname, "second.trace")
	if err := WriteTraceFile(spec, first); err != nil {
		t.Fatal(err)
	}
	if err := WriteTraceFile(spec, second); err != nil {
		t.Fatal(err)
	}
	firstData := Must1(os.ReadFile(first))
	secondData := Must1(os.ReadFile(second))
	if !bytes.Equal(firstData, secondData) {
		t.Fatal("expected byte-identical traces")
	}
}

func TestWriteTraceFileInvalidSpec(t *testing.T) {
	spec := TraceSpec{
		BitrateBitsPerSec: 0,
		DurationTicks:     DefaultDurationTicks,
	}
	path := filepath.Join(t.TempDir(), "invalid.trace")
	err := WriteTraceFile(spec, path)
	if !errors.Is(err, ErrInvalidBitrate) {
		t.Fatal("unexpected error", err)
	}
	if !errors.Is(err, ErrInvalidTraceSpec) {
		t.Fatal("expected the invalid-trace-spec umbrella error")
	}

	// there must be no side effect on failure
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected no file to be written")
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected no temporary file to be left behind")
	}
}

func TestWriteTraceFileUnwritablePath(t *testing.T) {
	spec := TraceSpec{
		BitrateBitsPerSec: 1_000_000,
		DurationTicks:     10,
	}
	path := filepath.Join(t.TempDir(), "nonexistent", "out.trace")
	if err := WriteTraceFile(spec, path); err == nil {
		t.Fatal("expected an error")
	}
}
