// Package command runs the external programs the OCR path depends on
// (pdftoppm, tesseract). Adapters take a Runner so tests can stub them.
package command

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/logger"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec and logs their duration.
type ExecRunner struct {
	log *logger.Logger
}

// NewExecRunner creates a runner that logs to log.
func NewExecRunner(log *logger.Logger) *ExecRunner {
	if log == nil {
		log = logger.Discard()
	}
	return &ExecRunner{log: log.With("exec")}
}

// Run executes name with args and returns its captured output.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		r.log.Warn("%s %s failed after %dms: %v: %s",
			name, strings.Join(args, " "), dur.Milliseconds(), err, truncate(errb.String(), 8<<10))
	} else {
		r.log.Debug("%s ok in %dms (%d bytes out)", name, dur.Milliseconds(), out.Len())
	}

	return out.Bytes(), errb.Bytes(), err
}

// Require checks that a program is installed.
// The error wraps domain.ErrToolNotFound and carries install hints.
func Require(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s (%s)", domain.ErrToolNotFound, name, InstallInstructions(name))
	}
	return nil
}

// InstallInstructions returns how to install a supported program.
func InstallInstructions(name string) string {
	switch name {
	case "pdftoppm":
		return "macOS: brew install poppler, Debian/Ubuntu: apt install poppler-utils"
	case "tesseract":
		return "macOS: brew install tesseract, Debian/Ubuntu: apt install tesseract-ocr"
	default:
		return "install " + name + " and make sure it is on PATH"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
