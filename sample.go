package linktrace

//
// Performance samples and per-run results
//

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/montanaflynn/stats"
)

// ErrNoSamples indicates that there are no samples to summarize.
var ErrNoSamples = errors.New("linktrace: no samples")

// SamplesCSVHeader is the header of the samples CSV format.
const SamplesCSVHeader = "time,throughput,delay,loss"

// Sample is a single performance sample collected (or synthesized)
// while a congestion-control scheme runs over an emulated link.
type Sample struct {
	// Time is the number of seconds since the run started.
	Time float64

	// ThroughputMbps is the measured throughput in Mbit/s.
	ThroughputMbps float64

	// RTTMillis is the measured round-trip time in milliseconds.
	RTTMillis float64

	// LossRate is the measured packet loss rate.
	LossRate float64
}

// CSVRecord formats the sample as a CSV record matching
// [SamplesCSVHeader].
func (s *Sample) CSVRecord() string {
	return fmt.Sprintf("%f,%f,%f,%f", s.Time, s.ThroughputMbps, s.RTTMillis, s.LossRate)
}

// WriteSamplesCSV writes the samples to the given path using the CSV
// format that the analysis step reads back.
func WriteSamplesCSV(path string, samples []Sample) error {
	filep, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("linktrace: creating %s: %w", path, err)
	}
	defer filep.Close()
	bw := bufio.NewWriter(filep)
	fmt.Fprintf(bw, "%s\n", SamplesCSVHeader)
	for idx := range samples {
		fmt.Fprintf(bw, "%s\n", samples[idx].CSVRecord())
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("linktrace: writing %s: %w", path, err)
	}
	return nil
}

// Result summarizes a single (scheme, profile) run. The JSON field
// names match the result files written by the reference experiments.
type Result struct {
	// Scheme is the congestion-control scheme name.
	Scheme string `json:"cc_algorithm"`

	// Profile is the link profile name.
	Profile string `json:"profile"`

	// AvgThroughputMbps is the average throughput in Mbit/s.
	AvgThroughputMbps float64 `json:"avg_throughput"`

	// AvgRTTMillis is the average round-trip time in milliseconds.
	AvgRTTMillis float64 `json:"avg_delay"`

	// LossRate is the average packet loss rate.
	LossRate float64 `json:"loss_rate"`
}

// Summarize reduces the samples of a (scheme, profile) run to a
// [Result]. Returns [ErrNoSamples] when samples is empty.
func Summarize(scheme, profile string, samples []Sample) (*Result, error) {
	if len(samples) <= 0 {
		return nil, ErrNoSamples
	}
	var throughput, rtt, loss stats.Float64Data
	for idx := range samples {
		throughput = append(throughput, samples[idx].ThroughputMbps)
		rtt = append(rtt, samples[idx].RTTMillis)
		loss = append(loss, samples[idx].LossRate)
	}
	result := &Result{
		Scheme:            scheme,
		Profile:           profile,
		AvgThroughputMbps: Must1(stats.Mean(throughput)),
		AvgRTTMillis:      Must1(stats.Mean(rtt)),
		LossRate:          Must1(stats.Mean(loss)),
	}
	return result, nil
}

// WriteResultJSON writes the result to the given path using the JSON
// format that the analysis step reads back.
func WriteResultJSON(path string, result *Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("linktrace: writing %s: %w", path, err)
	}
	return nil
}
