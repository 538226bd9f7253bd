// Command analyze loads experiment results and writes per-profile
// comparison reports.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/bassosimone/linktrace"
)

func main() {
	// parse command line flags
	dataDir := flag.String("datadir", "data", "directory containing experiment results")
	outputDir := flag.String("output", "reports", "directory where to write comparison reports")
	flag.Parse()

	rset, err := linktrace.LoadResults(*dataDir)
	if err != nil {
		log.WithError(err).Fatal("linktrace.LoadResults")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.WithError(err).Fatal("os.MkdirAll")
	}
	if err := rset.WriteComparisonReports(*outputDir); err != nil {
		log.WithError(err).Fatal("rset.WriteComparisonReports")
	}
	for _, name := range rset.ProfileNames() {
		log.Infof("analyze: wrote %s_comparison.csv", name)
	}
	fmt.Print(rset.Summary())
}
