package crawl

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/ohmanagement/sitebot"
)

// Ensure CommandBuilder implements sitebot.IndexBuilder at compile time.
var _ sitebot.IndexBuilder = (*CommandBuilder)(nil)

// CommandBuilder delegates the build to an external command, for example
// a separately deployed `sitebot build`.
type CommandBuilder struct {
	// Command is the program followed by its arguments.
	Command []string

	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// Build runs the command under ctx and returns its combined output. A
// missing program returns ENOTFOUND; a failing run returns EINTERNAL with
// the output attached to the result message.
func (b *CommandBuilder) Build(ctx context.Context) (*sitebot.BuildResult, error) {
	if len(b.Command) == 0 {
		return nil, sitebot.Errorf(sitebot.EINVALID, "build command not configured")
	}

	path, err := exec.LookPath(b.Command[0])
	if err != nil {
		return nil, sitebot.Errorf(sitebot.ENOTFOUND, "build command not found: %s", b.Command[0])
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, path, b.Command[1:]...)
	cmd.Dir = b.Dir
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, sitebot.Errorf(sitebot.EUNAVAILABLE, "build command interrupted: %v", ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, sitebot.Errorf(sitebot.EINTERNAL, "build command exited with %d: %s", exitErr.ExitCode(), out.String())
		}
		return nil, sitebot.Errorf(sitebot.EINTERNAL, "build command: %v", err)
	}

	return &sitebot.BuildResult{Output: out.String()}, nil
}
