package system

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// jobMemoryBudget is a rough peak per render job: one frame plus an ffmpeg encoder.
const jobMemoryBudget = 384 << 20

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn().Err(err).Msg("cannot read open file limit")
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn().Err(err).Msg("cannot raise open file limit")
		return
	}
	log.Debug().Uint64("nofile", uint64(rLimit.Cur)).Msg("open file limit raised")
}

// RecommendedWorkers sizes the render pool from CPU count and available memory.
func RecommendedWorkers() int {
	cores, err := cpu.Counts(true)
	if err != nil || cores <= 0 {
		cores = runtime.NumCPU()
	}
	workers := cores / 2
	if workers < 1 {
		workers = 1
	}

	vm, err := mem.VirtualMemory()
	if err == nil {
		byMemory := int(vm.Available / jobMemoryBudget)
		if byMemory < 1 {
			byMemory = 1
		}
		if byMemory < workers {
			workers = byMemory
		}
	}

	return workers
}

// ProcessRSS returns the resident set size of the current process in bytes.
func ProcessRSS() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}

// FindLatest returns the most recently modified file in dir with one of exts.
func FindLatest(dir string, exts ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExt(f.Name(), exts) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files in %s", strings.Join(exts, "/"), dir)
	}

	return latestFile, nil
}

func hasExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

var (
	encoderOnce sync.Once
	encoderName string
)

// GetBestH264Encoder prefers hardware H.264 encoders and falls back to libx264.
// The ffmpeg probe runs once per process.
func GetBestH264Encoder() string {
	encoderOnce.Do(func() {
		encoderName = "libx264"

		out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
		if err != nil {
			return
		}

		// VideoToolbox (macOS) first, then NVENC.
		for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
			if strings.Contains(string(out), name) {
				encoderName = name
				return
			}
		}
	})
	return encoderName
}
