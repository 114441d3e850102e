package main

import "github.com/emiliopalmerini/abtest/internal/cli"

func main() {
	cli.Execute()
}
