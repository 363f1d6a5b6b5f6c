// SPDX-License-Identifier: MPL-2.0

// Package project locates the Node-RED project whose flow file is split and
// rebuilt, and reads and writes that flow file.
//
// With projects disabled the project is the Node-RED user directory and the
// flow file name comes from the settings. With projects enabled the active
// project is read from <userDir>/.config.projects.json (or the older
// <userDir>/.config.json) and the flow file name from the project's
// package.json.
package project
