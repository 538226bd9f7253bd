package linktrace

//
// Canonical link profiles
//

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// ErrNoSuchProfile indicates that no profile has the given name.
var ErrNoSuchProfile = errors.New("linktrace: no such profile")

// LinkProfile describes an emulated link used by the experiments. The
// zero value is invalid; use one of the canonical profiles or fill
// all the fields.
type LinkProfile struct {
	// Name uniquely identifies the profile.
	Name string

	// BitrateBitsPerSec is the link bitrate in bits per second.
	BitrateBitsPerSec int64

	// OneWayDelay is the one-way propagation delay of the link.
	OneWayDelay time.Duration

	// TraceFileName is the file name of the capacity trace that
	// the emulator replays for this profile.
	TraceFileName string
}

// LowLatencyProfile is the low-latency, high-bandwidth link profile
// used by the reference experiments: 50 Mbit/s with 10 ms delay.
var LowLatencyProfile = &LinkProfile{
	Name:              "profile1",
	BitrateBitsPerSec: 50_000_000,
	OneWayDelay:       10 * time.Millisecond,
	TraceFileName:     "50mbps.trace",
}

// HighLatencyProfile is the high-latency, constrained-bandwidth link
// profile used by the reference experiments: 1 Mbit/s with 200 ms delay.
var HighLatencyProfile = &LinkProfile{
	Name:              "profile2",
	BitrateBitsPerSec: 1_000_000,
	OneWayDelay:       200 * time.Millisecond,
	TraceFileName:     "1mbps.trace",
}

// Profiles returns the canonical link profiles.
func Profiles() []*LinkProfile {
	return []*LinkProfile{LowLatencyProfile, HighLatencyProfile}
}

// ProfileByName returns the canonical profile with the given
// name. Returns [ErrNoSuchProfile] when the name is unknown.
func ProfileByName(name string) (*LinkProfile, error) {
	for _, profile := range Profiles() {
		if profile.Name == name {
			return profile, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoSuchProfile, name)
}

// CapacityMbps returns the link capacity in Mbit/s.
func (p *LinkProfile) CapacityMbps() float64 {
	return float64(p.BitrateBitsPerSec) / (1000 * 1000)
}

// QueueSizeBytes returns the droptail queue size for the link, sized
// to the bandwidth-delay product with the same truncating arithmetic
// used when generating traces.
func (p *LinkProfile) QueueSizeBytes() int64 {
	return p.BitrateBitsPerSec * p.OneWayDelay.Milliseconds() / 8 / 1000
}

// TraceSpec returns the [TraceSpec] describing this profile's
// capacity trace with the given duration in ticks.
func (p *LinkProfile) TraceSpec(durationTicks int64) TraceSpec {
	return TraceSpec{
		BitrateBitsPerSec: p.BitrateBitsPerSec,
		DurationTicks:     durationTicks,
	}
}

// WriteProfileTraces writes the capacity trace of every canonical
// profile inside the given directory, which must already exist. Each
// trace lasts durationTicks ticks.
func WriteProfileTraces(dir string, durationTicks int64) error {
	for _, profile := range Profiles() {
		path := filepath.Join(dir, profile.TraceFileName)
		if err := WriteTraceFile(profile.TraceSpec(durationTicks), path); err != nil {
			return err
		}
	}
	return nil
}
