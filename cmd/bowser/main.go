package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"bowser/pkg/cache"
	"bowser/pkg/config"
	"bowser/pkg/resource"
	"bowser/pkg/url"
	stdnet "bowser/std/net"
)

// browser holds the window state. All fields are touched only on the fyne
// goroutine.
type browser struct {
	window fyne.Window
	view   *pageView
	status *widget.Label
	loader *resource.Loader
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bowser [flags] [url]\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	client := &stdnet.Client{UserAgent: cfg.UserAgent, Timeout: cfg.Timeout.Duration}
	loader := resource.NewLoader(client, cache.New())
	loader.Logger = log.New(os.Stderr, "bowser: ", log.LstdFlags)

	a := app.New()
	w := a.NewWindow("bowser")
	w.Resize(fyne.NewSize(float32(cfg.Width), float32(cfg.Height)))

	b := &browser{
		window: w,
		view:   newPageView(resource.NewBowserRenderer(cfg.Fonts)),
		status: widget.NewLabel("Enter a URL and press Enter"),
		loader: loader,
	}

	urlEntry := widget.NewEntry()
	urlEntry.SetPlaceHolder("https://example.org/")
	urlEntry.OnSubmitted = func(raw string) {
		// Hand the keyboard to the page so Up/Down scroll it.
		w.Canvas().Focus(b.view)
		b.navigate(raw)
	}

	topBar := container.NewBorder(nil, nil, nil, nil, urlEntry)
	w.SetContent(container.NewBorder(topBar, b.status, nil, nil, b.view))
	w.Canvas().Focus(urlEntry)

	if flag.NArg() > 0 {
		urlEntry.SetText(flag.Arg(0))
		w.Canvas().Focus(b.view)
		b.navigate(flag.Arg(0))
	}

	w.ShowAndRun()
}

// navigate loads raw in the background and shows it when it arrives.
func (b *browser) navigate(raw string) {
	u := url.Parse(raw)
	b.status.SetText("Loading " + u.String() + "...")
	go func() {
		page, err := resource.Load(context.Background(), b.loader, u)
		fyne.Do(func() {
			if err != nil {
				log.Printf("loading %s: %v", u, err)
				b.status.SetText("Error: " + err.Error())
				return
			}
			b.view.SetPage(page)
			b.status.SetText(u.String())
			b.window.SetTitle("bowser - " + u.String())
		})
	}()
}
