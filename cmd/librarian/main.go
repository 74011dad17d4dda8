package main

import "github.com/georgemunganga/librarian/internal/cli"

func main() {
	cli.Execute()
}
