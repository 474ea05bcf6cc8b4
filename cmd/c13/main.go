package main

import "github.com/c13studio/c13-sdk/internal/cli"

func main() {
	cli.Execute()
}
