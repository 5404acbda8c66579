package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"deckview/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(app.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	err := app.Command().Run(ctx, os.Args)
	stop()
	if err != nil {
		// the log may not be set up yet, report to stderr directly
		fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		os.Exit(1)
	}
}
