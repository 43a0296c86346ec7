package main

import "github.com/emiliopalmerini/bcilab/internal/cli"

func main() {
	cli.Execute()
}
