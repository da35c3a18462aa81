package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/camvitals/internal/errors"
)

const (
	defaultPIDFile = "camvitals.pid"
)

// Path resolves the PID file location. An empty path selects the
// default file in the temp dir.
func Path(path string) string {
	if path == "" {
		return filepath.Join(os.TempDir(), defaultPIDFile)
	}
	return path
}

// Write writes the current process ID to the PID file at path. It fails
// with ErrAlreadyRunning if the file names a live process.
func Write(path string) error {
	errFactory := errors.New()
	pid := os.Getpid()
	path = Path(path)

	if bytes, err := os.ReadFile(path); err == nil {
		// PID file exists, check if the process is running
		existing, err := strconv.Atoi(strings.TrimSpace(string(bytes)))
		if err == nil && existing != pid && running(existing) {
			return errFactory.New(errors.ErrAlreadyRunning).
				WithData(map[string]any{"pid": existing, "path": path})
		}
	} else if !os.IsNotExist(err) {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove removes the PID file.
func Remove(path string) error {
	errFactory := errors.New()
	path = Path(path)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

func running(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
