//go:build !unix

package gitx

import "os/exec"

// killProcessGroupOnCancel keeps the default kill of the git process; the
// runner's WaitDelay still bounds the wait for inherited pipes.
func killProcessGroupOnCancel(*exec.Cmd) {}
