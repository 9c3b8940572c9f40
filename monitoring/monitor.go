package monitoring

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ResourceUsage is a snapshot of the process's resource consumption.
// Transcription is CPU heavy and long runs span days; the periodic log
// line is the main way to see a wedged or thrashing run.
type ResourceUsage struct {
	CPUPercent    float64
	MemoryUsedMB  float64
	MemoryTotalMB float64
	MemoryPercent float64
	NumGoroutines int
}

// StartMonitoring logs resource usage at the given interval until the
// context is cancelled.
func StartMonitoring(ctx context.Context, interval time.Duration) {
	go func() {
		proc, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			log.Printf("[monitoring] Error getting process: %v", err)
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				usage, err := getResourceUsage(proc)
				if err != nil {
					log.Printf("[monitoring] Error getting resource usage: %v", err)
					continue
				}
				log.Printf("[monitoring] CPU: %.2f%%, Memory: %.2f/%.2f MB (%.2f%%), Goroutines: %d",
					usage.CPUPercent,
					usage.MemoryUsedMB,
					usage.MemoryTotalMB,
					usage.MemoryPercent,
					usage.NumGoroutines)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func getResourceUsage(proc *process.Process) (ResourceUsage, error) {
	var usage ResourceUsage

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		return usage, fmt.Errorf("error getting CPU usage: %v", err)
	}
	usage.CPUPercent = cpuPercent

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return usage, fmt.Errorf("error getting process memory: %v", err)
	}
	usage.MemoryUsedMB = float64(memInfo.RSS) / 1024 / 1024

	vmem, err := mem.VirtualMemory()
	if err != nil {
		return usage, fmt.Errorf("error getting system memory: %v", err)
	}
	usage.MemoryTotalMB = float64(vmem.Total) / 1024 / 1024
	if vmem.Total > 0 {
		usage.MemoryPercent = float64(memInfo.RSS) / float64(vmem.Total) * 100
	}

	usage.NumGoroutines = runtime.NumGoroutine()
	return usage, nil
}
