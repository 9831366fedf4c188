package mimeconv

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// filterTimeout bounds how long an external filter may run, grounded on
// runfilter.cc's 300 second CPU and inactivity limits. Go's os/exec has no
// portable rlimit hook, so both collapse into this one overall wall-clock
// budget enforced via context cancellation.
const filterTimeout = 300 * time.Second

// errNoSuchFilter is returned by runFilter when the shell reports exit
// status 127, meaning the command named in the template does not exist.
var errNoSuchFilter = errors.New("mimeconv: filter command not found")

// runFilter runs cmd through "sh -c" and returns everything it wrote to
// stdout, matching stdout_to_string's contract: on missing-filter (shell
// exit 127) it returns errNoSuchFilter; any other non-zero exit or I/O
// failure is reported as a plain error.
func runFilter(cmd string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), filterTimeout)
	defer cancel()

	c := exec.CommandContext(ctx, "/bin/sh", "-c", cmd)
	var stdout bytes.Buffer
	c.Stdout = &stdout
	c.Stdin = nil

	err := c.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return nil, errors.New("mimeconv: filter inactive for too long")
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 127 {
		return nil, errNoSuchFilter
	}
	return nil, err
}
