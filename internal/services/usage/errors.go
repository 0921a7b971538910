package usage

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// ErrNotInstalled matches CommandErrors caused by a missing node or
// ccusage installation.
var ErrNotInstalled = errors.New("ccusage is not installed")

// ErrorKind classifies why a ccusage invocation failed.
type ErrorKind int

const (
	// KindUnexpected is any failure not covered by another kind.
	KindUnexpected ErrorKind = iota
	// KindCcusageNotFound means the ccusage executable could not be found.
	KindCcusageNotFound
	// KindNodeNotFound means node, or ccusage through node, is not reachable.
	KindNodeNotFound
	// KindPermission means the executable could not be run due to permissions.
	KindPermission
	// KindSession means ccusage ran but could not read Claude session data.
	KindSession
	// KindFailed means ccusage exited non-zero for another reason.
	KindFailed
	// KindParse means ccusage produced output that is not the expected JSON.
	KindParse
)

// String returns a short label for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindCcusageNotFound:
		return "ccusage not found"
	case KindNodeNotFound:
		return "node not found"
	case KindPermission:
		return "permission denied"
	case KindSession:
		return "claude session unavailable"
	case KindFailed:
		return "command failed"
	case KindParse:
		return "invalid output"
	default:
		return "unexpected error"
	}
}

// CommandError describes a failed ccusage invocation.
type CommandError struct {
	Err     error
	Command string // ccusage subcommand, e.g. "blocks"
	Stderr  string
	Paths   Paths
	Kind    ErrorKind
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("ccusage %s: %s: %s", e.Command, e.Kind, firstLine(e.Stderr))
	}
	if e.Err != nil {
		return fmt.Sprintf("ccusage %s: %s: %v", e.Command, e.Kind, e.Err)
	}
	return fmt.Sprintf("ccusage %s: %s", e.Command, e.Kind)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrNotInstalled and the failure was a
// missing installation.
func (e *CommandError) Is(target error) bool {
	return target == ErrNotInstalled && (e.Kind == KindCcusageNotFound || e.Kind == KindNodeNotFound)
}

// Hint returns troubleshooting steps for the failure.
func (e *CommandError) Hint() string {
	switch e.Kind {
	case KindCcusageNotFound:
		return "Install ccusage globally with one of:\n" +
			"  npm install -g ccusage\n" +
			"  yarn global add ccusage\n" +
			"  pnpm add -g ccusage\n" +
			"Then make sure it is on your PATH, or set CCUSAGE_PATH."
	case KindNodeNotFound:
		return "Node.js is required to run ccusage.\n" +
			"Install it from https://nodejs.org, with Homebrew (brew install node)\n" +
			"or a version manager such as nvm, fnm or volta, then run\n" +
			"  npm install -g ccusage\n" +
			"Set NODE_PATH to use a custom Node.js binary."
	case KindPermission:
		return fmt.Sprintf("Check the permissions of:\n  %s\n  %s\n"+
			"Installing Node.js through nvm, fnm or volta avoids sudo, or run\n"+
			"  npm config set prefix ~/.npm-global", e.Paths.Node, e.Paths.Ccusage)
	case KindSession:
		return "ccusage could not read Claude data. Use Claude Code once so that\n" +
			"session logs exist under ~/.claude, then refresh."
	case KindParse:
		return "ccusage returned unexpected output. Update it with\n" +
			"  npm update -g ccusage"
	default:
		return fmt.Sprintf("Try running it manually:\n  %s %s --json\n"+
			"Check the version with\n  %s --version\n"+
			"and reinstall if needed:\n  npm install -g ccusage", e.Paths.Ccusage, e.Command, e.Paths.Ccusage)
	}
}

// classifyStartError maps a failure to start the process.
func classifyStartError(command string, paths Paths, err error) *CommandError {
	ce := &CommandError{Command: command, Paths: paths, Err: err, Kind: KindUnexpected}
	switch {
	case errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist):
		switch {
		case paths.Ccusage == defaultCcusage:
			ce.Kind = KindCcusageNotFound
		case paths.Node == defaultNode:
			ce.Kind = KindNodeNotFound
		default:
			ce.Kind = KindFailed
		}
	case errors.Is(err, fs.ErrPermission):
		ce.Kind = KindPermission
	}
	return ce
}

// classifyExitError maps a non-zero exit using what ccusage printed.
func classifyExitError(command string, paths Paths, stderr string, err error) *CommandError {
	ce := &CommandError{Command: command, Paths: paths, Stderr: strings.TrimSpace(stderr), Err: err}
	switch {
	case strings.Contains(stderr, "command not found") || strings.Contains(stderr, "No such file"):
		ce.Kind = KindCcusageNotFound
	case strings.Contains(stderr, "ENOENT"):
		ce.Kind = KindNodeNotFound
	case strings.Contains(stderr, "permission") || strings.Contains(stderr, "EACCES"):
		ce.Kind = KindPermission
	case strings.Contains(stderr, "Claude Code") || strings.Contains(stderr, "session"):
		ce.Kind = KindSession
	default:
		ce.Kind = KindFailed
	}
	return ce
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
