package driver

import (
	"fmt"
	"os"
	"runtime/pprof"
)

// StartCPUProfile begins a runtime/pprof CPU profile written to path, the
// Go-native analogue of profiler.py's cProfile-based profiling mode around
// the analysis pipeline. path == "" is a no-op: profiling is off by
// default (spec §6 "--cpuprofile").
//
// The returned stop func closes out the profile and must be called once
// the run (RunFile or RunStreaming) finishes; it is safe to call on the
// no-op case too.
func StartCPUProfile(path string) (stop func(), err error) {
	if path == "" {
		return func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("driver: creating cpu profile %s: %w", path, err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("driver: starting cpu profile: %w", err)
	}

	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}
