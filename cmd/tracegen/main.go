// Command tracegen generates a constant-rate link-capacity trace file.
package main

import (
	"flag"

	"github.com/apex/log"
	"github.com/bassosimone/linktrace"
)

func main() {
	// parse command line flags
	bitrate := flag.Float64("bitrate", 0, "target bitrate in bits per second")
	duration := flag.Int64("duration", linktrace.DefaultDurationTicks, "trace duration in ticks (milliseconds)")
	output := flag.String("output", "", "destination trace file path")
	flag.Parse()

	if *output == "" {
		log.Fatal("tracegen: you must specify the -output path")
	}

	// truncating the bitrate to an integer cannot change the per-tick
	// byte budget because a fractional bit never crosses a byte boundary
	spec := linktrace.TraceSpec{
		BitrateBitsPerSec: int64(*bitrate),
		DurationTicks:     *duration,
	}
	if err := linktrace.WriteTraceFile(spec, *output); err != nil {
		log.WithError(err).Fatal("linktrace.WriteTraceFile")
	}
	log.Infof("tracegen: wrote %d ticks of %d byte/tick to %s",
		spec.DurationTicks, spec.BytesPerTick(), *output)
}
