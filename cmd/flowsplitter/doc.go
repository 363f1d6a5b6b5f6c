// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the flow-splitter CLI.
//
// The root command loads settings, resolves the Node-RED project and hands
// the work to the splitter service. Subcommands split a flow file into a
// source tree, rebuild it, follow the flow file with a watcher, and manage
// the settings file.
package cmd
