package main

import (
	"buck/cmd"
)

func main() {
	cmd.Execute()
}
