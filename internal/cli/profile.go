package cli

import (
	"bytes"
	"fmt"
	"kiki/internal/logging"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"
)

// memorySampleRate is how often to take a heap snapshot, in Hz. Values below 1 keep the number of dump files
// manageable
const memorySampleRate = 0.5

type profiler struct {
	logger *logging.Logger

	cpuOutput *os.File

	memDumpPath string
	heapDumps   [][]byte
	stop        chan struct{}
	done        chan struct{}
}

// startProfiler writes a CPU profile to cpuProfile and periodic heap profiles into memProfileDir. Either may be
// empty to skip that profile.
func startProfiler(cpuProfile, memProfileDir string, logger *logging.Logger) (*profiler, error) {
	p := &profiler{logger: logger}

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return nil, err
		}
		if err = pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, fmt.Errorf("starting CPU profiler: %w", err)
		}
		p.cpuOutput = f
	}

	if memProfileDir != "" {
		p.memDumpPath = memProfileDir
		p.stop = make(chan struct{})
		p.done = make(chan struct{})
		go p.sampleHeap()
	}
	return p, nil
}

func (p *profiler) sampleHeap() {
	defer close(p.done)
	ticker := time.NewTicker(time.Duration(1/memorySampleRate*1000) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.dumpHeap()
		}
	}
}

func (p *profiler) dumpHeap() {
	w := bytes.NewBuffer(nil)
	if err := pprof.WriteHeapProfile(w); err != nil {
		p.logger.WithError(err).Warn("Error taking heap profile")
		return
	}
	p.heapDumps = append(p.heapDumps, w.Bytes())
}

// Stop flushes every profile to disk. It is safe to call on a nil profiler.
func (p *profiler) Stop() {
	if p == nil {
		return
	}

	if p.cpuOutput != nil {
		pprof.StopCPUProfile()
		if err := p.cpuOutput.Close(); err != nil {
			p.logger.WithError(err).Error("Error writing CPU profile")
		}
		p.cpuOutput = nil
	}

	if p.stop != nil {
		close(p.stop)
		<-p.done
		p.stop = nil
		p.dumpHeap()

		if err := os.MkdirAll(p.memDumpPath, 0755); err != nil {
			p.logger.WithError(err).Error("Error creating memory profile directory")
			return
		}
		for i, dump := range p.heapDumps {
			path := filepath.Join(p.memDumpPath, fmt.Sprintf("mem-%d.mprof", i))
			if err := os.WriteFile(path, dump, 0644); err != nil {
				p.logger.WithError(err).Error("Error writing memory profile to disk")
			}
		}
	}
}
