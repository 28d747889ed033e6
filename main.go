package main

import "auction-house/internal/app/cli"

func main() {
	cli.Execute()
}
