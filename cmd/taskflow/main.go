package main

import "github.com/poorman/TaskFlow/internal/cli"

func main() {
	cli.Execute()
}
