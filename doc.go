// Package linktrace prepares and evaluates congestion-control
// experiments driven by a trace-based link emulator.
//
// The core functionality is generating constant-rate link-capacity
// traces. A trace file contains one line per millisecond tick, and
// each line is the number of bytes the emulated link may transmit
// during that tick. Use [TraceSpec] to describe a trace and
// [WriteTraceFile] to produce it. The emulator consuming these files
// is an external tool; this package only produces the format it reads.
//
// A [LinkProfile] bundles a target bitrate with a one-way delay and
// derives the corresponding trace spec and droptail queue size, the
// latter computed from the bandwidth-delay product. The two canonical
// profiles, [LowLatencyProfile] and [HighLatencyProfile], reproduce
// the 50 Mbit/s and 1 Mbit/s links used by the reference experiments.
//
// Use [RunExperiment] to drive the external benchmarking harness for
// a given scheme and profile. The harness and the emulator are
// collaborators that must already be installed; we only construct
// their command lines and invoke them.
//
// When no harness is available, [SimulateScheme] produces synthetic
// per-second performance samples for well-known congestion-control
// schemes, shaped like the measurements the harness would collect.
//
// [LoadResults] reads the per-(profile, scheme) result directories
// written by either path and produces comparison reports.
package linktrace
