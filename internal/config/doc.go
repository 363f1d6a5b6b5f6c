// SPDX-License-Identifier: MPL-2.0

// Package config handles the two configuration documents of flow-splitter.
//
// Settings configure the tool itself: where the Node-RED user directory is,
// how the flow file is named, how to reach the admin API and how to log. They
// are merged by Viper from built-in defaults, an optional flow-splitter.cue
// file (validated against the embedded #Settings CUE schema), a .env file and
// FLOW_SPLITTER_* environment variables, in increasing precedence.
//
// TransformConfig is the per-project splitter state stored next to the source
// tree in .config.flow-splitter.json: the on-disk encoding, the destination
// folder and the recorded tab order. It is validated against the embedded
// #TransformConfig schema on every load.
package config
