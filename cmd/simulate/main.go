// Command simulate generates synthetic measurement data for a
// congestion-control scheme over a canonical link profile.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/bassosimone/linktrace"
)

func main() {
	// parse command line flags
	scheme := flag.String("scheme", linktrace.SchemeCubic, "congestion-control scheme to simulate")
	profileName := flag.String("profile", linktrace.LowLatencyProfile.Name, "link profile name")
	runtime := flag.Duration("runtime", 60*time.Second, "simulated runtime")
	seed := flag.Int64("seed", 0, "random seed (0 means time-based)")
	dataDir := flag.String("datadir", "data", "directory where to write results")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	profile, err := linktrace.ProfileByName(*profileName)
	if err != nil {
		log.WithError(err).Fatal("linktrace.ProfileByName")
	}

	samples, err := linktrace.SimulateScheme(*scheme, profile, *runtime, *seed)
	if err != nil {
		log.WithError(err).Fatal("linktrace.SimulateScheme")
	}

	// write the samples and their summary using the same layout
	// the real harness would use
	runDir := filepath.Join(*dataDir, fmt.Sprintf("%s_%s", profile.Name, *scheme))
	if err := os.MkdirAll(runDir, 0755); err != nil {
		log.WithError(err).Fatal("os.MkdirAll")
	}
	csvPath := filepath.Join(runDir, *scheme+"_throughput.csv")
	if err := linktrace.WriteSamplesCSV(csvPath, samples); err != nil {
		log.WithError(err).Fatal("linktrace.WriteSamplesCSV")
	}
	result := linktrace.Must1(linktrace.Summarize(*scheme, profile.Name, samples))
	resultPath := filepath.Join(runDir, "result.json")
	if err := linktrace.WriteResultJSON(resultPath, result); err != nil {
		log.WithError(err).Fatal("linktrace.WriteResultJSON")
	}

	log.Infof("simulate: %s on %s: %.3f Mbit/s, %.1f ms, %.4f loss",
		*scheme, profile.Name, result.AvgThroughputMbps,
		result.AvgRTTMillis, result.LossRate)
}
