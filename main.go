package main

import "github.com/theirongolddev/orca/cmd"

func main() {
	cmd.Execute()
}
