// Package system holds host-level helpers shared by the CLIs.
package system

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// InitResourceLimits raises the open-file limit so batch runs over large
// registries do not hit EMFILE (macOS/Linux).
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not read file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not raise file limit: %v", err)
	} else {
		fmt.Printf("[*] Open file limit raised to %d\n", rLimit.Cur)
	}
}

// FindLatestImage returns the most recently modified JPEG/PNG in dir.
func FindLatestImage(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	extensions := []string{".jpg", ".jpeg", ".png"}
	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		isImage := false
		for _, ext := range extensions {
			if strings.HasSuffix(strings.ToLower(f.Name()), ext) {
				isImage = true
				break
			}
		}
		if isImage {
			info, err := f.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(latestTime) {
				latestTime = info.ModTime()
				latestFile = filepath.Join(dir, f.Name())
			}
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no images found in %s", dir)
	}
	return latestFile, nil
}

// PrintMemoryStats logs host and process memory usage after a batch run.
func PrintMemoryStats() {
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Printf("[!] Could not read memory stats: %v", err)
		return
	}

	fmt.Printf("[*] Host memory: %.1f%% used (%.1f GB of %.1f GB)\n",
		vm.UsedPercent,
		float64(vm.Used)/(1<<30),
		float64(vm.Total)/(1<<30))

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}
	if info, err := proc.MemoryInfo(); err == nil {
		fmt.Printf("[*] Process RSS: %.1f MB\n", float64(info.RSS)/(1<<20))
	}
}
