//go:build unix

package main

import (
	"os/exec"
	"syscall"
)

// configureDaemonProcess starts zahlenpiratd in its own process group
func configureDaemonProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
