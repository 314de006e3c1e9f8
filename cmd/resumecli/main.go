package main

import (
	"context"
	"os"
	"os/signal"

	"resume-parser-go/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	cli.ExecuteContext(ctx)
}
