package main

import "github.com/partplan/partplan/cmd"

func main() {
	cmd.Execute()
}
