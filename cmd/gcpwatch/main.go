package main

import "github.com/ppiankov/gcpwatch/internal/cli"

func main() {
	cli.Execute()
}
