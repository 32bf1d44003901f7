package main

import "github.com/pfrederiksen/rastreio/internal/cli"

func main() {
	cli.Execute()
}
