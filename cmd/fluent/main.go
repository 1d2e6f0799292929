package main

import (
	"context"
	"fmt"
	"os"

	"github.com/thewaterfall/fluent-go/internal/cmd"
)

func run(args []string) int {
	ctx := context.Background()
	if err := cmd.Execute(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "fluent: %v\n", err)
		return cmd.ExitCode(err)
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:]))
}
