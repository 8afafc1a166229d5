// Package envinfo collects the facts an operator needs before launching:
// which interpreter will run the pipeline, whether a local venv is in
// play, and what hardware the reconstruction stages will have to work with.
package envinfo

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/mark2-vision/pipemon/internal/pyenv"
)

// Interpreter describes the Python interpreter the launcher would use.
type Interpreter struct {
	Path        string `json:"path" yaml:"path"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	FromVenv    bool   `json:"from_venv" yaml:"from_venv"`
	VenvDir     string `json:"venv_dir,omitempty" yaml:"venv_dir,omitempty"`
	VenvMissing bool   `json:"venv_missing" yaml:"venv_missing"`
}

// Hardware describes the host.
type Hardware struct {
	CPUModel     string `json:"cpu_model" yaml:"cpu_model"`
	CPUThreads   int    `json:"cpu_threads" yaml:"cpu_threads"`
	RAMBytes     uint64 `json:"ram_bytes" yaml:"ram_bytes"`
	RAMFreeBytes uint64 `json:"ram_free_bytes" yaml:"ram_free_bytes"`
	OS           string `json:"os" yaml:"os"`
	Architecture string `json:"arch" yaml:"arch"`
}

// Info is the full environment report.
type Info struct {
	Root        string      `json:"root" yaml:"root"`
	Interpreter Interpreter `json:"interpreter" yaml:"interpreter"`
	Hardware    Hardware    `json:"hardware" yaml:"hardware"`
}

// Collect gathers the environment report for a launcher root. Missing
// pieces (no interpreter, unreadable hardware counters) degrade to empty
// fields rather than failing the report.
func Collect(ctx context.Context, root string) *Info {
	info := &Info{
		Root:     root,
		Hardware: detectHardware(),
	}

	if venv := pyenv.Detect(root); venv != nil {
		info.Interpreter.FromVenv = true
		info.Interpreter.VenvDir = venv.Root
		if path, err := venv.InterpreterPath(); err == nil {
			info.Interpreter.Path = path
			if v, err := pyenv.Version(ctx, path, nil); err == nil {
				info.Interpreter.Version = v
			}
		}
		return info
	}

	info.Interpreter.VenvMissing = true
	if path, err := pyenv.ResolveSystem(); err == nil {
		info.Interpreter.Path = path
		if v, err := pyenv.Version(ctx, path, nil); err == nil {
			info.Interpreter.Version = v
		}
	}
	return info
}

func detectHardware() Hardware {
	hw := Hardware{
		CPUThreads:   runtime.NumCPU(),
		CPUModel:     "Unknown",
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		if infos[0].ModelName != "" {
			hw.CPUModel = infos[0].ModelName
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		hw.RAMBytes = vm.Total
		hw.RAMFreeBytes = vm.Available
	}
	return hw
}
