//go:build !unix

package ytdlp

import "os/exec"

// killProcessGroup is a no-op; cmd.WaitDelay still bounds the wait.
func killProcessGroup(*exec.Cmd) {}
