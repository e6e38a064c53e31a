package terminal

import (
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
)

// DefaultTermType is advertised to every shell as TERM.
const DefaultTermType = "xterm-256color"

// ShellConfig selects the process Create launches.
type ShellConfig struct {
	// Shell is the program path. Empty means $SHELL, then /bin/sh
	// (cmd.exe on Windows).
	Shell string
	// Args are passed to the shell. Nil starts a login shell (-l) unless the
	// shell is plain sh or cmd.exe.
	Args []string
	// Dir is the working directory. Empty resolves from the home directory.
	Dir string
	// TermType is exported as TERM. Empty means DefaultTermType.
	TermType string
	// Env is appended to the inherited environment.
	Env []string
}

func (c ShellConfig) command(log *zap.Logger) Command {
	shell := resolveShell(c.Shell)

	args := c.Args
	if args == nil && loginCapable(shell) {
		args = []string{"-l"}
	}

	dir := c.Dir
	if dir == "" {
		dir = homeDir(log)
	}

	term := c.TermType
	if term == "" {
		term = DefaultTermType
	}

	env := append(os.Environ(), "TERM="+term)
	env = append(env, c.Env...)

	return Command{
		Path: shell,
		Args: args,
		Dir:  dir,
		Env:  env,
	}
}

func resolveShell(shell string) string {
	if shell != "" {
		return shell
	}
	if runtime.GOOS == "windows" {
		return "cmd.exe"
	}
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	return "/bin/sh"
}

func loginCapable(shell string) bool {
	switch filepath.Base(shell) {
	case "sh", "cmd.exe", "cmd", "powershell.exe", "pwsh.exe":
		return false
	}
	return true
}

// homeDir resolves USERPROFILE, then HOME, falling back to the current
// directory.
func homeDir(log *zap.Logger) string {
	for _, key := range []string{"USERPROFILE", "HOME"} {
		if dir := os.Getenv(key); dir != "" {
			return dir
		}
	}
	log.Warn("No home directory in USERPROFILE or HOME, using current directory")
	return "."
}
