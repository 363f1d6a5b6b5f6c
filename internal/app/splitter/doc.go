// SPDX-License-Identifier: MPL-2.0

// Package splitter orchestrates split and rebuild of a Node-RED project: it
// loads the project's splitter config, runs the flowset transform, reads or
// writes the source tree and the flow file, and asks the host to reload after
// a rebuild. It decouples the CLI and the watcher from the file layers.
package splitter
