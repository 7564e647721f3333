package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// CLI is the command line interface of mutexstress.
type CLI struct {
	Run     RunCmd     `kong:"cmd,help='Contends for a recursive mutex from many goroutines.'"`
	Version VersionCmd `kong:"cmd,help='Display mutexstress version information.'"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	parser := kong.Must(&cli,
		kong.Description("Stress tests the semaphore-backed recursive mutex."),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.UsageOnError())

	app, parseErr := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(parseErr)

	appErr := app.Run()
	app.FatalIfErrorf(appErr)
}
