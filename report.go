package linktrace

//
// Cross-scheme result analysis
//

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
)

// ErrNoResults indicates that a scan found no result files.
var ErrNoResults = errors.New("linktrace: no results found")

// ComparisonCSVHeader is the header of the per-profile comparison CSV.
const ComparisonCSVHeader = "scheme,avg_throughput_mbps,avg_rtt_ms,loss_rate"

// ResultSet contains the results loaded from a data directory. The
// zero value is invalid; construct using [LoadResults].
type ResultSet struct {
	// Results contains the loaded results.
	Results []*Result
}

// LoadResults scans dataDir for `<profile>_<scheme>/result.json`
// entries and loads them. When a result belongs to a canonical
// profile, its average throughput is clamped to the profile capacity,
// since a scheme cannot outrun the link it measured through. Returns
// [ErrNoResults] when the scan finds nothing.
func LoadResults(dataDir string) (*ResultSet, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("linktrace: reading %s: %w", dataDir, err)
	}
	rset := &ResultSet{}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.Contains(entry.Name(), "_") {
			continue
		}
		path := filepath.Join(dataDir, entry.Name(), "result.json")
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		result := &Result{}
		if err := json.Unmarshal(data, result); err != nil {
			return nil, fmt.Errorf("linktrace: parsing %s: %w", path, err)
		}

		// older harness versions did not record the names, so
		// fall back to the directory naming convention
		profileName, schemeName, _ := strings.Cut(entry.Name(), "_")
		if result.Profile == "" {
			result.Profile = profileName
		}
		if result.Scheme == "" {
			result.Scheme = schemeName
		}

		if profile, err := ProfileByName(result.Profile); err == nil {
			result.AvgThroughputMbps = min(result.AvgThroughputMbps, profile.CapacityMbps())
		}
		rset.Results = append(rset.Results, result)
	}
	if len(rset.Results) <= 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoResults, dataDir)
	}
	sort.Slice(rset.Results, func(i, j int) bool {
		left, right := rset.Results[i], rset.Results[j]
		if left.Profile != right.Profile {
			return left.Profile < right.Profile
		}
		return left.Scheme < right.Scheme
	})
	return rset, nil
}

// ProfileNames returns the sorted profile names in the result set.
func (rset *ResultSet) ProfileNames() []string {
	var names []string
	for _, result := range rset.Results {
		if len(names) <= 0 || names[len(names)-1] != result.Profile {
			names = append(names, result.Profile)
		}
	}
	return names
}

// ByProfile returns the results for the given profile name.
func (rset *ResultSet) ByProfile(name string) []*Result {
	var out []*Result
	for _, result := range rset.Results {
		if result.Profile == name {
			out = append(out, result)
		}
	}
	return out
}

// Summary formats the result set as a human-readable table.
func (rset *ResultSet) Summary() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "profile\tscheme\tthroughput (Mbit/s)\trtt (ms)\tloss\n")
	for _, result := range rset.Results {
		fmt.Fprintf(
			tw,
			"%s\t%s\t%.3f\t%.1f\t%.4f\n",
			result.Profile,
			result.Scheme,
			result.AvgThroughputMbps,
			result.AvgRTTMillis,
			result.LossRate,
		)
	}
	tw.Flush()
	return sb.String()
}

// WriteComparisonCSV writes the per-profile comparison CSV for the
// given profile name inside the given directory.
func (rset *ResultSet) WriteComparisonCSV(dir, profileName string) error {
	path := filepath.Join(dir, profileName+"_comparison.csv")
	filep, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("linktrace: creating %s: %w", path, err)
	}
	defer filep.Close()
	bw := bufio.NewWriter(filep)
	fmt.Fprintf(bw, "%s\n", ComparisonCSVHeader)
	for _, result := range rset.ByProfile(profileName) {
		fmt.Fprintf(
			bw,
			"%s,%f,%f,%f\n",
			result.Scheme,
			result.AvgThroughputMbps,
			result.AvgRTTMillis,
			result.LossRate,
		)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("linktrace: writing %s: %w", path, err)
	}
	return nil
}

// WriteComparisonReports writes one comparison CSV per profile in the
// result set inside the given directory, which must already exist.
func (rset *ResultSet) WriteComparisonReports(dir string) error {
	for _, name := range rset.ProfileNames() {
		if err := rset.WriteComparisonCSV(dir, name); err != nil {
			return err
		}
	}
	return nil
}
