// Package sysreport logs an end-of-run resource usage line (wall time,
// resident set size at finish), the same gopsutil process-introspection monitor.go's
// listResources uses to expose CPU/memory over HTTP (SPEC_FULL.md §4 A8).
package sysreport

import (
	"log"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Report tracks wall-clock time since Start and reads this process's own
// resource usage at Finish.
type Report struct {
	started time.Time
	proc    *process.Process
}

// Start begins timing the current run.
func Start() *Report {
	r := &Report{started: time.Now()}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		r.proc = p
	}
	return r
}

// Finish logs "run finished in %s, RSS %d bytes" with the process's current
// resident set size (degrading to wall time alone if the process handle
// could not be opened, e.g. on a platform gopsutil doesn't support) and
// returns the same two values.
func (r *Report) Finish() (wall time.Duration, rssBytes uint64) {
	wall = time.Since(r.started)

	if r.proc == nil {
		log.Printf("run finished in %s", wall)
		return wall, 0
	}

	mem, err := r.proc.MemoryInfo()
	if err != nil {
		log.Printf("run finished in %s (memory info unavailable: %v)", wall, err)
		return wall, 0
	}

	log.Printf("run finished in %s, RSS %d bytes", wall, mem.RSS)
	return wall, mem.RSS
}
