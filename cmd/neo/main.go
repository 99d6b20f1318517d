package main

import "neo-platform/internal/cli"

func main() {
	cli.Execute()
}
