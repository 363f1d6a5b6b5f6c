// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// exhaustionHint reports whether err means the OS ran out of watch
// resources, with a hint for the operator. A user directory with installed
// nodes outside node_modules can exceed fs.inotify.max_user_watches.
func exhaustionHint(err error) (string, bool) {
	switch {
	case errors.Is(err, syscall.ENOSPC):
		return "raise fs.inotify.max_user_watches or narrow the watched directory", true
	case errors.Is(err, syscall.EMFILE):
		return "raise the open file limit of the process (ulimit -n)", true
	case errors.Is(err, syscall.ENFILE):
		return "the system-wide open file limit is reached", true
	default:
		return "", false
	}
}
