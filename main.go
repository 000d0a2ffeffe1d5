package main

import (
	"os"

	"github.com/jobsai/shortlister/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
