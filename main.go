package main

import (
	"os"

	"weekly-chronicle/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
