package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/larnav/internal/intel"
	"github.com/standardbeagle/larnav/internal/watcher"
)

func watchCommand(c *cli.Context) error {
	proj, cfg, err := openProject(c)
	if err != nil {
		return err
	}
	asJSON := c.Bool("json")

	svc := intel.NewService(proj, cfg)
	svc.OnDiagnostics = func(path string, diags []intel.Diagnostic) {
		for _, d := range diags {
			fd := toFileDiagnostic(path, d)
			if asJSON {
				if data, err := json.Marshal(fd); err == nil {
					fmt.Println(string(data))
				}
				continue
			}
			fmt.Printf("%s:%d:%d: %s: %s\n", fd.Path, fd.Line, fd.Col, fd.Severity, fd.Message)
		}
	}
	defer svc.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("initial scan failed: %w", err)
	}

	w, err := watcher.New(proj, cfg, func(events []watcher.Event) {
		for _, ev := range events {
			svc.ApplyFSEvent(ev.Path, ev.Type == watcher.EventRemove)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer w.Stop()

	if !asJSON {
		fmt.Printf("Watching %s (Ctrl-C to stop)\n", proj.Root)
	}

	<-ctx.Done()

	if !asJSON {
		stats := w.GetStats()
		fmt.Printf("\n%d events seen, %d delivered\n", stats.EventsSeen, stats.EventsDelivered)
	}
	return nil
}
