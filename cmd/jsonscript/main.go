// Command jsonscript transforms a stream of JSON documents with a Lua script.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/arnodel/jsonscript/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	c := cli.New(os.Stdin, os.Stdout, os.Stderr, os.Environ())
	if err := c.Run(ctx, os.Args[1:]...); err != nil {
		stop()
		os.Exit(1)
	}
}
