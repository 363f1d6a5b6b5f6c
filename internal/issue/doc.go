// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown guidance
// for the failures users of flow-splitter run into most: a missing project,
// an unreadable flow file, an empty source tree and so on. The CLI renders
// catalog entries with glamour below the error message.
package issue
