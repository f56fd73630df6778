// SPDX-License-Identifier: MPL-2.0

package main

import cmd "pyforge-cli/cmd/pyforge"

func main() {
	cmd.Execute()
}
