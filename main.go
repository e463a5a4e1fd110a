package main

import (
	"os"

	"github.com/wselearn/wse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
