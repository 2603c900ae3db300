package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/fogleman/gg"

	"bowser/pkg/cache"
	"bowser/pkg/config"
	"bowser/pkg/resource"
	"bowser/pkg/url"
	stdnet "bowser/std/net"
)

func main() {
	width := flag.Int("w", 0, "viewport width in pixels (default from config)")
	height := flag.Int("h", 0, "viewport height in pixels (default from config)")
	output := flag.String("o", "output.png", "output PNG file path")
	scroll := flag.Float64("scroll", 0, "vertical scroll offset")
	configPath := flag.String("config", "", "path to a TOML config file")
	verbose := flag.Bool("v", false, "log cache and redirect events")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bowsershot [flags] <url>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}

	client := &stdnet.Client{UserAgent: cfg.UserAgent, Timeout: cfg.Timeout.Duration}
	loader := resource.NewLoader(client, cache.New())
	if *verbose {
		loader.Logger = log.New(os.Stderr, "bowsershot: ", 0)
	}

	u := url.Parse(flag.Arg(0))
	fmt.Fprintf(os.Stderr, "Fetching %s...\n", u)
	page, err := resource.Load(context.Background(), loader, u)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching URL: %v\n", err)
		os.Exit(1)
	}

	target := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	renderer := resource.NewBowserRenderer(cfg.Fonts)

	fmt.Fprintf(os.Stderr, "Rendering %dx%d...\n", cfg.Width, cfg.Height)
	res := renderer.Render(page, target, *scroll)

	if err := gg.SavePNG(*output, target); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving PNG: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Saved to %s (%d runs, content height %.0f)\n", *output, len(res.Runs), res.Height)
}
