package main

import "github.com/pfrederiksen/rugby-fixtures/internal/cli"

func main() {
	cli.Execute()
}
