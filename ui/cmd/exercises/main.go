// Exercises switches between the counter and todo exercises.
//
// Usage:
//
//	exercises [-config file] [-start counter|todo] [-listen addr] [-srv]
//	          [-log file] [-dump] [-script file]
//
// Pick an exercise from the select at the top: Left/Right or a click.
// Tab moves the focus. Esc quits. With -listen the session is also
// served over 9P; -script applies action lines and prints the result.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/elizafairlady/exercises/exercise/switcher"
	"github.com/elizafairlady/exercises/internal/config"
	"github.com/elizafairlady/exercises/internal/logging"
	"github.com/elizafairlady/exercises/ui"
)

var (
	configFile = flag.String("config", "exercises.yaml", "configuration file")
	start      = flag.String("start", "", "first exercise: counter or todo")
	listen     = flag.String("listen", "", "9P listen address (host:port or unix!/path)")
	post       = flag.Bool("srv", false, "post the 9P server to /srv")
	logFile    = flag.String("log", "", "log file")
	dump       = flag.Bool("dump", false, "print the initial screen and exit")
	script     = flag.String("script", "", "apply action lines from file (- for stdin) and print the result")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if *start != "" {
		cfg.Start = *start
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	th, err := cfg.NewTheme()
	if err != nil {
		log.Fatal(err)
	}

	sw := switcher.NewWith(cfg.StartChoice())
	sw.Header = cfg.Header

	if *script != "" {
		in := os.Stdin
		if *script != "-" {
			f, err := os.Open(*script)
			if err != nil {
				log.Fatal(err)
			}
			defer f.Close()
			in = f
		}
		if err := ui.Script(sw.App(), in, os.Stdout, th); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("start", "exercise", sw.Choice().String(), "listen", cfg.Listen)
	err = ui.Run(ctx, sw.App(), ui.Options{
		Title:  cfg.Title,
		Listen: cfg.Listen,
		Post:   *post,
		Theme:  th,
		Logger: logger,
		Dump:   *dump,
	})
	if err != nil {
		log.Fatal(err)
	}
}
