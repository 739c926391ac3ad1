package main

import (
	"os"

	"github.com/firefly-engineering/snapbox/cmd"
	"github.com/firefly-engineering/snapbox/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
