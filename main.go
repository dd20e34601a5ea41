package main

import "imagesplit/internal/cli"

func main() {
	cli.Execute()
}
