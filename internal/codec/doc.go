// SPDX-License-Identifier: MPL-2.0

// Package codec encodes node lists to and from bytes: the group files of the
// source tree (JSON or YAML) and the Node-RED flow file itself.
//
// Map keys are written in sorted order by both encodings, so re-encoding an
// unchanged group produces identical bytes. Numbers decoded from JSON are kept
// as json.Number to avoid float rounding of large integers.
package codec
