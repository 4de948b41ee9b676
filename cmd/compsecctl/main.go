package main

import "compsec/internal/commands"

func main() {
	commands.Execute()
}
