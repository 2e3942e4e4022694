// Todo runs the todo exercise on its own.
//
// Usage: todo [-listen addr] [-dump]
//
// Type into the input and press Enter or Add. Done/Undo toggles an
// item, Remove deletes it, Clear drops completed items. Esc quits.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/elizafairlady/exercises/exercise/todo"
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

	app := view.Bind[todo.Msg](todo.New(), todo.Decode)
	if err := ui.Run(ctx, app, ui.Options{Title: "Todo", Listen: *listen, Dump: *dump}); err != nil {
		log.Fatal(err)
	}
}
