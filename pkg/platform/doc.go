// SPDX-License-Identifier: MPL-2.0

// Package platform holds OS-specific constants and the file naming rules
// source-tree files must satisfy on every platform.
package platform
