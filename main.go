package main

import "github.com/aanasc4/data-integration/cmd"

func main() {
	cmd.Execute()
}
