package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/glide/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (default ~/.config/glide/config.toml)")
	view := flag.String("view", "", "view to open (default: last used)")
	locationFile := flag.String("location", "", "location file path (overrides config)")
	open := flag.String("open", "", "record a location such as 'users?page=3&search=ann' and exit")
	debug := flag.Bool("debug", false, "write a debug log to the temp directory")
	flag.Parse()

	opts := app.Options{
		ConfigPath: *configPath,
		View:       *view,
		Location:   *locationFile,
		Debug:      *debug,
	}

	if *open != "" {
		loc, err := app.Open(opts, *open)
		if err != nil {
			fmt.Fprintf(os.Stderr, "glide: %v\n", err)
			return 1
		}
		fmt.Println(loc)
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "glide: %v\n", err)
		return 1
	}
	return 0
}
