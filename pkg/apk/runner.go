// pkg/apk/runner.go
package apk

import (
	"context"
	"os/exec"
	"strings"
)

// Runner is the capability interface for external tool invocation. The
// assembler drives the resource compiler, objcopy and the signer through
// it; tests substitute a fake without touching pipeline logic.
type Runner interface {
	// Run executes name with args and returns the combined output.
	// A non-zero exit is an error; the output is still returned so the
	// caller can preserve the tool's diagnostics verbatim.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools as real subprocesses
type ExecRunner struct {
	// Dir is the working directory for every invocation, optional
	Dir string
}

// Run implements Runner
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	return cmd.CombinedOutput()
}

// run invokes the tool through the configured runner and converts a
// failure into a ToolError carrying the full command line and output
func run(ctx context.Context, r Runner, name string, args ...string) error {
	out, err := r.Run(ctx, name, args...)
	if err != nil {
		return &ToolError{
			Cmd:    name + " " + strings.Join(args, " "),
			Output: strings.TrimSpace(string(out)),
			Err:    err,
		}
	}
	return nil
}
