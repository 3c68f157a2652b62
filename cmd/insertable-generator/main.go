// Package main provides the CLI entrypoint for insertable-generator.
//
// insertable-generator is a build-time Go codegen tool that:
//   - Parses Go packages to find structs marked //insertable:generate
//   - Reads their table binding, changeset and exclusion directives
//   - Writes an Insertable<Name> type holding the fields accepted on insert
//   - Adds by-value and by-reference conversions into that type
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCommand().ExecuteContext(ctx)
}
