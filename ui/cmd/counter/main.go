// Counter runs the counter exercise on its own.
//
// Usage: counter [-listen addr] [-dump]
//
// Tab to a button and press Enter, or click it. Esc quits.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/elizafairlady/exercises/exercise/counter"
	"github.com/elizafairlady/exercises/ui"
	"github.com/elizafairlady/exercises/ui/view"
)

var (
	listen = flag.String("listen", "", "9P listen address")
	dump   = flag.Bool("dump", false, "print the initial screen and exit")
)

func main() {
	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := view.Bind[counter.Msg](counter.New(), counter.Decode)
	if err := ui.Run(ctx, app, ui.Options{Title: "Counter", Listen: *listen, Dump: *dump}); err != nil {
		log.Fatal(err)
	}
}
