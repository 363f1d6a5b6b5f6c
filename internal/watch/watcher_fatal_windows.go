// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// Win32 error codes that leave ReadDirectoryChangesW unusable.
const (
	errnoTooManyOpenFiles = syscall.Errno(4)
	errnoInvalidHandle    = syscall.Errno(6)
	errnoNotEnoughMemory  = syscall.Errno(8)
)

// exhaustionHint reports whether err means the watch handle is gone or
// could not be allocated, with a hint for the operator.
func exhaustionHint(err error) (string, bool) {
	switch {
	case errors.Is(err, errnoTooManyOpenFiles):
		return "close other programs holding file handles", true
	case errors.Is(err, errnoInvalidHandle):
		return "the watched directory was removed or unmounted", true
	case errors.Is(err, errnoNotEnoughMemory):
		return "not enough memory for the change notification buffer", true
	default:
		return "", false
	}
}
