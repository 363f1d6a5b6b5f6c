// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/HSQIntegrelec/node-red-contrib-flow-splitter/cmd/flowsplitter"

func main() {
	cmd.Execute()
}
