// Command experiment runs congestion-control experiments through the
// external benchmarking harness for each (scheme, profile) pair.
package main

import (
	"context"
	"flag"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/bassosimone/linktrace"
	"github.com/schollz/progressbar/v3"
)

func main() {
	// parse command line flags
	schemes := flag.String("schemes", strings.Join(linktrace.Schemes(), ","), "comma-separated schemes to test")
	profiles := flag.String("profiles", "profile1,profile2", "comma-separated link profile names")
	runtime := flag.Duration("runtime", 60*time.Second, "runtime of each experiment")
	dataDir := flag.String("datadir", "data", "directory where the harness writes results")
	traceDir := flag.String("tracedir", "traces", "directory containing the capacity traces")
	harnessDir := flag.String("harness", "pantheon", "directory containing the harness checkout")
	extraArgs := flag.String("extra-args", "", "extra arguments for the harness invocation")
	flag.Parse()

	// build the list of experiments to run
	var configs []*linktrace.ExperimentConfig
	for _, profileName := range strings.Split(*profiles, ",") {
		profile, err := linktrace.ProfileByName(profileName)
		if err != nil {
			log.WithError(err).Fatal("linktrace.ProfileByName")
		}
		for _, scheme := range strings.Split(*schemes, ",") {
			configs = append(configs, &linktrace.ExperimentConfig{
				Scheme:            scheme,
				Profile:           profile,
				Runtime:           *runtime,
				DataDir:           *dataDir,
				TraceDir:          *traceDir,
				HarnessDir:        *harnessDir,
				ExtraEmulatorArgs: *extraArgs,
			})
		}
	}

	// run them sequentially: the emulated links would otherwise
	// compete for the same host resources
	ctx := context.Background()
	bar := progressbar.Default(int64(len(configs)), "experiments")
	var failed int
	for _, config := range configs {
		if err := linktrace.RunExperiment(ctx, log.Log, config); err != nil {
			log.WithError(err).Warnf("experiment failed: %s on %s", config.Scheme, config.Profile.Name)
			failed++
		}
		bar.Add(1)
	}
	if failed > 0 {
		log.Fatalf("experiment: %d experiment(s) failed", failed)
	}
	log.Info("experiment: all experiments completed successfully")
}
