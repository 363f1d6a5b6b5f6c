// SPDX-License-Identifier: MPL-2.0

// Package noderedapi talks to the Node-RED admin HTTP API.
//
// Only the endpoint needed to make a running editor pick up a rebuilt flow
// file is covered: POST /flows with the "reload" deployment type, which tells
// the runtime to load its flows from storage again.
package noderedapi
