package main

import (
	"os"

	"github.com/soundprediction/linkpath/cmd/linkpath"
)

func main() {
	if err := linkpath.Execute(); err != nil {
		os.Exit(1)
	}
}
