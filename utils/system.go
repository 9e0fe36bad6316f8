package utils

import (
	"fmt"
	"math"
	"runtime"
	"time"
)

func GetMemUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	// For info on each, see: https://golang.org/pkg/runtime/#MemStats
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}
	return fmt.Sprintf("Alloc = %v MiB TotalAlloc = %v MiB Sys = %v MiB NumGC = %v",
		bToMb(m.Alloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC)
}

func IsNan(A any) bool {
	switch v := A.(type) {
	case float64:
		return math.IsNaN(v)
	case []float64:
		for _, f := range v {
			if math.IsNaN(f) {
				return true
			}
		}
	}
	return false
}

// Timer prints the elapsed time of a stage when verbose is set
type Timer struct {
	name    string
	start   time.Time
	verbose bool
}

func NewTimer(name string, verbose bool) *Timer {
	if verbose {
		fmt.Printf("Start %s\n", name)
	}
	return &Timer{name: name, start: time.Now(), verbose: verbose}
}

func (t *Timer) Stop() (elapsed time.Duration) {
	elapsed = time.Since(t.start)
	if t.verbose {
		fmt.Printf("Finished %s in %v\n", t.name, elapsed)
	}
	return
}
