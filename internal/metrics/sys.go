package metrics

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/dustin/go-humanize"
)

// SysHealth represents real-time process metrics.
type SysHealth struct {
	AllocMB      uint64 `json:"allocMb"`
	TotalAllocMB uint64 `json:"totalAllocMb"`
	SysMB        uint64 `json:"sysMb"`
	NumGC        uint32 `json:"numGc"`
	Goroutines   int    `json:"goroutines"`
	DataDiskSize string `json:"dataDiskSize"`
}

// GetSysHealth collects real-time health data, including the size of the
// data directory.
func GetSysHealth(dataPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		AllocMB:      m.Alloc / 1024 / 1024,
		TotalAllocMB: m.TotalAlloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		DataDiskSize: humanize.IBytes(dirSize(dataPath)),
	}
}

func dirSize(path string) uint64 {
	var size int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return uint64(size)
}
