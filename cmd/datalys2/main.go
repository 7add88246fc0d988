package main

import "datalys2/internal/cli"

func main() {
	cli.Execute()
}
