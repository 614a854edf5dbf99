package main

import "gmauleon.org/snowdissect/cmd"

func main() {
	cmd.Execute()
}
