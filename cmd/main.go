package main

import (
	"os"

	"github.com/dasdy/tapboard/cmd/tapboard"
	"github.com/dasdy/tapboard/logging"
)

func main() {
	// Replaced once flags are parsed, so that config loading can already log
	logging.Setup(os.Stderr, false)

	tapboard.Execute()
}
