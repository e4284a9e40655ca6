package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/larnav/internal/config"
	"github.com/standardbeagle/larnav/internal/debug"
	"github.com/standardbeagle/larnav/internal/project"
)

var Version = "0.3.0"

// loadConfigWithOverrides loads configuration and applies CLI flag overrides.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, string, error) {
	root := c.String("root")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("failed to determine working directory: %w", err)
		}
		found, err := project.Find(cwd)
		if err != nil {
			return nil, "", err
		}
		root = found
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve root path %q: %w", root, err)
	}

	cfg, err := config.LoadWithRoot(c.String("config"), absRoot)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Project.Root = absRoot

	if workers := c.Int("workers"); workers > 0 {
		cfg.Scan.ParallelWorkers = workers
	}
	if c.Bool("vendor") {
		cfg.Scan.ScanVendor = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, absRoot, nil
}

func openProject(c *cli.Context) (*project.Project, *config.Config, error) {
	cfg, root, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, nil, err
	}

	// Tool-level environment overrides (DEBUG=1 and friends) can live
	// next to the project instead of the shell profile.
	_ = godotenv.Load(filepath.Join(root, ".larnav.env"))

	proj, err := project.Open(root, cfg)
	if err != nil {
		return nil, nil, err
	}
	return proj, cfg, nil
}

func main() {
	app := &cli.App{
		Name:                   "larnav",
		Usage:                  "Laravel convention navigation and diagnostics",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   ".larnav.kdl",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Laravel project root (default: walk up from cwd looking for artisan)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parallel scan workers (0 = NumCPU)",
			},
			&cli.BoolFlag{
				Name:  "vendor",
				Usage: "Include vendor/ service providers in registry scans",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Show debug information",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "scan",
				Aliases: []string{"s"},
				Usage:   "Scan the project and report convention diagnostics",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
					&cli.StringFlag{
						Name:  "severity",
						Usage: "Minimum severity to report: error, warning, info",
						Value: "info",
					},
					&cli.BoolFlag{
						Name:  "stats",
						Usage: "Print cache statistics after the scan",
					},
				},
				Action: scanCommand,
			},
			{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Watch the project and stream diagnostics as files change",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON lines",
					},
				},
				Action: watchCommand,
			},
			{
				Name:  "resolve",
				Usage: "Resolve one pattern target (e.g. larnav resolve view users.index)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: resolveCommand,
			},
			{
				Name:    "refs",
				Usage:   "Find every reference to a resource (e.g. larnav refs view users.index)",
				Aliases: []string{"references"},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: refsCommand,
			},
			{
				Name:  "config",
				Usage: "Configuration management commands",
				Subcommands: []*cli.Command{
					{
						Name:    "init",
						Aliases: []string{"i"},
						Usage:   "Initialize configuration file (.larnav.kdl)",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "output",
								Aliases: []string{"o"},
								Usage:   "Output file path (default: .larnav.kdl)",
							},
							&cli.BoolFlag{
								Name:  "force",
								Usage: "Overwrite existing configuration file",
							},
						},
						Action: configInitCommand,
					},
					{
						Name:    "show",
						Aliases: []string{"sh"},
						Usage:   "Show effective configuration values",
						Action:  configShowCommand,
					},
					{
						Name:   "validate",
						Usage:  "Validate configuration file",
						Action: configValidateCommand,
					},
				},
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				os.Setenv("DEBUG", "1")
				debug.SetDebugOutput(os.Stderr)
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
