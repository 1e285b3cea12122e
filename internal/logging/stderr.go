//go:build !windows

package logging

import (
	"bufio"
	"os"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// CaptureStderr redirects file descriptor 2 into the logger, one warning per
// line. Audio libraries print there directly and would corrupt a terminal
// view. Call the returned function to restore stderr.
func CaptureStderr() (func(), error) {
	if log.StandardLogger().Out == os.Stderr {
		return nil, errLogsOnStderr
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	logger := log.WithFields(log.Fields{
		"package":  "logging",
		"function": "CaptureStderr",
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				logger.Warn(line)
			}
		}
	}()

	restore := func() {
		_ = syscall.Dup2(orig, int(os.Stderr.Fd()))
		_ = syscall.Close(orig)
		w.Close()
		<-done
		r.Close()
	}
	return restore, nil
}
