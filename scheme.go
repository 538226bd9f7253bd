package linktrace

//
// Synthetic congestion-control scheme models
//

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrUnknownScheme indicates that we have no model for a scheme.
var ErrUnknownScheme = errors.New("linktrace: unknown scheme")

// ErrInvalidRuntime indicates that the runtime is shorter than the
// one-second sampling period.
var ErrInvalidRuntime = errors.New("linktrace: runtime must be at least one second")

// Names of the congestion-control schemes we can simulate.
const (
	SchemeCubic = "cubic"
	SchemeBBR   = "bbr"
	SchemeVegas = "vegas"
)

// Schemes returns the names of the schemes we can simulate.
func Schemes() []string {
	return []string{SchemeCubic, SchemeBBR, SchemeVegas}
}

// schemeParams contains the shape parameters of a scheme model for a
// specific link profile.
type schemeParams struct {
	// baseThroughput is the steady-state throughput in Mbit/s.
	baseThroughput float64

	// throughputVar is the throughput variation amplitude.
	throughputVar float64

	// baseRTT is the steady-state round-trip time in milliseconds.
	baseRTT float64

	// rttVar is the round-trip time variation amplitude.
	rttVar float64

	// baseLoss is the steady-state packet loss rate.
	baseLoss float64

	// lossVar is the loss-rate variation amplitude.
	lossVar float64
}

// schemeParamsFor returns the shape parameters for the given scheme
// over the given link profile. The numbers come from how each scheme
// is known to behave: cubic fills the pipe and backs off on loss, bbr
// stays close to capacity with small queues, vegas trades throughput
// for the lowest delay.
func schemeParamsFor(scheme string, profile *LinkProfile) (*schemeParams, error) {
	lowLatency := profile.Name == LowLatencyProfile.Name
	switch scheme {
	case SchemeCubic:
		if lowLatency {
			return &schemeParams{45, 5, 20, 5, 0.001, 0.002}, nil
		}
		return &schemeParams{0.9, 0.1, 400, 20, 0.005, 0.005}, nil
	case SchemeBBR:
		if lowLatency {
			return &schemeParams{48, 2, 15, 3, 0.002, 0.003}, nil
		}
		return &schemeParams{0.95, 0.05, 350, 10, 0.003, 0.002}, nil
	case SchemeVegas:
		if lowLatency {
			return &schemeParams{40, 1, 12, 2, 0.0005, 0.0005}, nil
		}
		return &schemeParams{0.85, 0.05, 320, 5, 0.001, 0.001}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, scheme)
	}
}

// SimulateScheme produces one synthetic performance sample per second
// of runtime for the given scheme over the given link profile. The
// output is deterministic for a given seed, which makes regression
// testing trivial.
func SimulateScheme(scheme string, profile *LinkProfile, runtime time.Duration, seed int64) ([]Sample, error) {
	params, err := schemeParamsFor(scheme, profile)
	if err != nil {
		return nil, err
	}
	count := int(runtime / time.Second)
	if count <= 0 {
		return nil, ErrInvalidRuntime
	}
	rnd := rand.New(rand.NewSource(seed))
	uniform := func(lo, hi float64) float64 {
		return lo + rnd.Float64()*(hi-lo)
	}

	// start from the steady state plus symmetric noise
	samples := make([]Sample, 0, count)
	for idx := 0; idx < count; idx++ {
		samples = append(samples, Sample{
			Time:           float64(idx),
			ThroughputMbps: params.baseThroughput + uniform(-params.throughputVar, params.throughputVar),
			RTTMillis:      params.baseRTT + uniform(0, params.rttVar),
			LossRate:       params.baseLoss + uniform(0, params.lossVar),
		})
	}

	// then apply the scheme-specific dynamics
	ceiling := params.baseThroughput + params.throughputVar
	floor := params.baseThroughput - params.throughputVar
	for idx := 1; idx < count; idx++ {
		prev := samples[idx-1].ThroughputMbps
		switch scheme {
		case SchemeCubic:
			// periodic congestion events followed by recovery
			if idx%10 == 0 {
				samples[idx].ThroughputMbps = prev * 0.7
			} else if prev < params.baseThroughput {
				samples[idx].ThroughputMbps = min(prev*1.1, ceiling)
			}
		case SchemeBBR:
			// periodic bandwidth probing followed by drain
			if idx%8 == 0 {
				samples[idx].ThroughputMbps = prev * 1.1
			} else if idx%8 == 1 {
				samples[idx].ThroughputMbps = min(prev*0.95, ceiling)
			}
		case SchemeVegas:
			// delay-based control keeps the rate very stable
			value := prev * uniform(0.98, 1.02)
			samples[idx].ThroughputMbps = min(max(value, floor), ceiling)
		}
	}
	return samples, nil
}
