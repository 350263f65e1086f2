package main

import "github.com/natsites/nps-places/internal/cli"

func main() {
	cli.Execute()
}
