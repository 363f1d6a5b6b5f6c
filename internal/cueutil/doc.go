// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates JSON and CUE documents against embedded CUE
// schemas and decodes them into Go structs.
//
// Every configuration document of flow-splitter follows the same flow:
// compile the embedded schema, compile the user document, unify the two,
// validate, decode. Errors carry the file name and the JSON path of the
// offending field:
//
//	.config.flow-splitter.json: fileFormat: 2 errors in empty disjunction
package cueutil
