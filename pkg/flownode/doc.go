// SPDX-License-Identifier: MPL-2.0

// Package flownode models a single node of a Node-RED flow document.
//
// A Node is an opaque JSON object: the package only interprets the handful of
// fields that drive classification (id, type, z, label, name, category) and
// preserves every other field verbatim. Classify maps a node to a closed set
// of kinds before any kind-specific logic runs, and Sanitize strips the
// volatile layout fields that produce noisy version-control diffs.
package flownode
