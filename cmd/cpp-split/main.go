package main

import (
	"github.com/mvp-joe/cpp-split/internal/cli"
)

func main() {
	cli.Execute()
}
