package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/larnav/internal/intel"
	"github.com/standardbeagle/larnav/internal/types"
)

func kindArg(c *cli.Context) (types.PatternKind, error) {
	name := c.Args().Get(0)
	kind := types.PatternKindFromString(name)
	if kind == types.PatternInvalid {
		return kind, fmt.Errorf("unknown pattern kind %q (e.g. view, config, env, route-name)", name)
	}
	return kind, nil
}

func resolveCommand(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("usage: larnav resolve <kind> <target> [secondary]")
	}
	kind, err := kindArg(c)
	if err != nil {
		return err
	}
	target := c.Args().Get(1)

	proj, cfg, err := openProject(c)
	if err != nil {
		return err
	}

	svc := intel.NewService(proj, cfg)
	defer svc.Stop()
	if err := svc.Start(context.Background()); err != nil {
		return fmt.Errorf("project scan failed: %w", err)
	}

	occ := types.PatternOccurrence{
		Kind:      kind,
		Target:    target,
		Secondary: c.Args().Get(2),
	}
	res := svc.ResolvePattern(occ)
	if err := printResult(target, res, c.Bool("json")); err != nil {
		return err
	}
	if res.State == types.Missing {
		return cli.Exit("", 1)
	}
	return nil
}

func refsCommand(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("usage: larnav refs <kind> <key>")
	}
	kind, err := kindArg(c)
	if err != nil {
		return err
	}
	key := c.Args().Get(1)

	proj, cfg, err := openProject(c)
	if err != nil {
		return err
	}

	svc := intel.NewService(proj, cfg)
	defer svc.Stop()
	if err := svc.Start(context.Background()); err != nil {
		return fmt.Errorf("project scan failed: %w", err)
	}

	// Accept a template path in place of a view name, so shell
	// completion on files works: refs view resources/views/home.blade.php.
	if kind == types.PatternView {
		if name, ok := svc.ViewNameFor(key); ok {
			key = name
		}
	}

	refs, err := svc.FindReferences(kind, key)
	if err != nil {
		return fmt.Errorf("reference search failed: %w", err)
	}

	if c.Bool("json") {
		type refOut struct {
			Path string `json:"path"`
			Line uint   `json:"line"`
			Col  uint   `json:"col"`
		}
		out := make([]refOut, 0, len(refs))
		for _, r := range refs {
			out = append(out, refOut{Path: r.Path, Line: r.Span.Row + 1, Col: r.Span.Col + 1})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, r := range refs {
		fmt.Printf("%s:%d:%d\n", r.Path, r.Span.Row+1, r.Span.Col+1)
	}
	if len(refs) == 0 {
		fmt.Printf("no references to %s %q\n", kind, key)
	}
	return nil
}
