// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test on error, plus a
// fixture for building Node-RED user directories on disk.
package testutil
