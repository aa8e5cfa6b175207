package main

import (
	"github.com/vulncert/vulncert/cmd"
)

func main() {
	cmd.Execute()
}
