package system

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var (
	VideoExts   = []string{".mp4", ".mov", ".m4v", ".mkv", ".webm", ".avi"}
	ArchiveExts = []string{".zip"}
	TableExts   = []string{".csv"}
	FontExts    = []string{".ttf", ".otf"}
)

// InitResourceLimits поднимает лимит открытых файлов: каждый воркер держит
// два процесса ffmpeg с пайпами.
func InitResourceLimits(log zerolog.Logger) {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Warn().Err(err).Msg("could not read open file limit")
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Warn().Err(err).Msg("could not raise open file limit")
	} else {
		log.Debug().Uint64("nofile", uint64(rLimit.Cur)).Msg("open file limit raised")
	}
}

// HasExt reports whether name ends in one of exts, case-insensitively.
func HasExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// FindLatest returns the most recently modified file in dir whose extension
// is one of exts. accept, when non-nil, filters candidates further.
func FindLatest(dir string, exts []string, accept func(path string) bool) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || strings.HasPrefix(f.Name(), ".") || !HasExt(f.Name(), exts) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, f.Name())
		if accept != nil && !accept(path) {
			continue
		}
		if latestFile == "" || info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = path
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files in %s", strings.Join(exts, "/"), dir)
	}
	return latestFile, nil
}

var (
	encoderOnce sync.Once
	encoderName = "libx264"
)

// GetBestH264Encoder picks a hardware H.264 encoder when ffmpeg offers one.
// The probe runs once per process.
func GetBestH264Encoder() string {
	encoderOnce.Do(func() {
		out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
		if err != nil {
			return
		}
		encoderName = pickEncoder(string(out))
	})
	return encoderName
}

// Приоритеты: VideoToolbox (macOS), NVENC (NVIDIA), затем libx264.
func pickEncoder(listing string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return "libx264"
}

// WorkerBudget is the memory one render job is expected to need: two ffmpeg
// processes plus a handful of full-size frames.
const WorkerBudget = 512 << 20

// RecommendedWorkers sizes the row pool from physical cores and available
// memory. It never returns less than 1.
func RecommendedWorkers() int {
	cores, err := cpu.Counts(false)
	if err != nil || cores <= 0 {
		cores, _ = cpu.Counts(true)
	}
	var avail uint64
	if vm, err := mem.VirtualMemory(); err == nil {
		avail = vm.Available
	}
	return workersFor(cores, avail)
}

func workersFor(cores int, available uint64) int {
	// ffmpeg сам многопоточный, поэтому берём половину ядер
	n := cores / 2
	if available > 0 {
		if byMem := int(available / WorkerBudget); byMem < n {
			n = byMem
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}
