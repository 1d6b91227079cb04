// SPDX-License-Identifier: MIT
package main

import "github.com/skaphos/spacesync/cmd/spacesync"

var execute = spacesync.Execute

func main() {
	execute()
}
