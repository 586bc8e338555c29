// Package processtest re-executes the running test binary as a stand-in for
// kubectl. A test package opts in by declaring
//
//	func TestHelperProcess(t *testing.T) { processtest.RunHelper() }
//
// and then spawning processtest.Command(...) through the real process package.
package processtest

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"kubel/internal/process"
)

const (
	envWantHelper = "GO_WANT_HELPER_PROCESS"
	envMode       = "KUBEL_HELPER_MODE"
)

// Helper modes.
const (
	// ModeSleep prints "started" and then blocks until killed.
	ModeSleep = "sleep"
	// ModeEcho prints each argument on its own line (odd ones to stderr) and exits 0.
	ModeEcho = "echo"
	// ModeExit exits immediately with the status given as the first argument.
	ModeExit = "exit"
)

// Command builds a process.Command that runs the helper in mode.
func Command(mode string, args ...string) process.Command {
	argv := append([]string{"-test.run=TestHelperProcess", "--"}, args...)
	return process.Command{
		Binary: os.Args[0],
		Args:   argv,
		Env:    []string{envWantHelper + "=1", envMode + "=" + mode},
	}
}

// RunHelper does nothing in the normal test run. In a helper child it acts
// out the requested mode and exits without returning.
func RunHelper() {
	if os.Getenv(envWantHelper) != "1" {
		return
	}

	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}

	switch os.Getenv(envMode) {
	case ModeSleep:
		fmt.Fprintln(os.Stdout, "started")
		for {
			time.Sleep(time.Hour)
		}
	case ModeEcho:
		for i, a := range args {
			if i%2 == 1 {
				fmt.Fprintln(os.Stderr, a)
			} else {
				fmt.Fprintln(os.Stdout, a)
			}
		}
		os.Exit(0)
	case ModeExit:
		code := 0
		if len(args) > 0 {
			code, _ = strconv.Atoi(args[0])
		}
		os.Exit(code)
	default:
		fmt.Fprintf(os.Stderr, "unknown helper mode %q\n", os.Getenv(envMode))
		os.Exit(2)
	}
}
