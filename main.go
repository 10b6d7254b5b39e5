// SPDX-License-Identifier: MPL-2.0

// steward supervises packaged services and their lifecycle hooks.
package main

import cmd "github.com/stewardhq/steward/cmd/steward"

func main() {
	cmd.Execute()
}
