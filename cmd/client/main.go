// Command messenger is the terminal client of the snapshot messenger.
package main

import "messenger/internal/cli"

func main() {
	cli.Execute()
}
