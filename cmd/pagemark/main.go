package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/pagemark-labs/pagemark-cli/internal/adapters/driving/cli"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		cli.Root(),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
