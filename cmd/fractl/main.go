package main

import (
	"os"

	"github.com/banrakshak/fra-ocr-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
