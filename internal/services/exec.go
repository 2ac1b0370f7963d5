package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// diagnosticTailBytes bounds how much subprocess stderr is carried into an
// error message.
const diagnosticTailBytes = 400

// RunCommand executes an external binary and waits for it. A non-zero exit
// surfaces the exit code plus the tail of stderr, tagged with ErrExternalTool
// so callers can classify the failure.
func RunCommand(ctx context.Context, stage, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		tail := Truncate(stderr.String(), diagnosticTailBytes)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Wrap(ErrExternalTool, stage, binary,
				fmt.Sprintf("exit code %d: %s", exitErr.ExitCode(), tail), nil)
		}
		return Wrap(ErrExternalTool, stage, binary, tail, err)
	}
	return nil
}
