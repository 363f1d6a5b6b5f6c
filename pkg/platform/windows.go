// SPDX-License-Identifier: MPL-2.0

package platform

import "strings"

// WindowsReservedNames are device names Windows refuses as file names,
// with or without an extension.
var WindowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsWindowsReservedName reports whether name is a reserved device name.
// Windows only looks at the part before the first dot, so "nul.tar.gz"
// is reserved as well.
func IsWindowsReservedName(name string) bool {
	stem, _, _ := strings.Cut(name, ".")
	return WindowsReservedNames[strings.ToUpper(stem)]
}

// PortableFileStem returns stem unchanged unless it is reserved on Windows,
// in which case it is prefixed with an underscore. Normalized group names
// never contain underscores, so the result cannot collide with another group.
func PortableFileStem(stem string) string {
	if IsWindowsReservedName(stem) {
		return "_" + stem
	}
	return stem
}
