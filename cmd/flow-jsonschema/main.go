package main

import "github.com/pjm0616/flow-jsonschema/internal/cli"

func main() {
	cli.Execute()
}
