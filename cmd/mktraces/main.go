// Command mktraces generates the capacity traces of every canonical
// link profile inside a directory.
package main

import (
	"flag"
	"os"

	"github.com/apex/log"
	"github.com/bassosimone/linktrace"
)

func main() {
	// parse command line flags
	dir := flag.String("dir", "traces", "directory where to write the traces")
	duration := flag.Int64("duration", linktrace.DefaultDurationTicks, "trace duration in ticks (milliseconds)")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0755); err != nil {
		log.WithError(err).Fatal("os.MkdirAll")
	}
	if err := linktrace.WriteProfileTraces(*dir, *duration); err != nil {
		log.WithError(err).Fatal("linktrace.WriteProfileTraces")
	}
	for _, profile := range linktrace.Profiles() {
		log.Infof("mktraces: wrote %s (%d byte/tick)",
			profile.TraceFileName, profile.TraceSpec(*duration).BytesPerTick())
	}
}
