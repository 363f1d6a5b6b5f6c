// SPDX-License-Identifier: MPL-2.0

// Package flowset converts a flat Node-RED flow document (the monolith) into
// a FlowSet of named groups and back.
//
// Split classifies every node, creates one group per tab, subflow and config
// node, disambiguates groups whose names would map to the same file, attaches
// member nodes to their owner through the z field and sorts every group's
// content by id with the defining node first. Rebuild reverses the process,
// restoring the original tab order from the recorded page order.
//
// All functions are pure: inputs are never mutated and outputs never alias
// their inputs.
package flowset
