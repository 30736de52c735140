package split

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CommandRunner executes one encoder invocation. It exists so tests can
// substitute the external process.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string) error
}

// stderrTailLimit bounds how much of the encoder's error stream is kept
// for failure reports.
const stderrTailLimit = 4096

// execRunner runs the real encoder binary, capturing the tail of its
// error stream.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	// The encoder may prompt before overwriting when no overwrite policy
	// was chosen.
	cmd.Stdin = os.Stdin
	tail := &tailBuffer{limit: stderrTailLimit}
	cmd.Stderr = tail

	if err := cmd.Run(); err != nil {
		if detail := tail.String(); detail != "" {
			return fmt.Errorf("%w: %s", err, detail)
		}
		return err
	}
	return nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.limit {
		t.buf = t.buf[len(t.buf)-t.limit:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return strings.TrimSpace(string(t.buf))
}
