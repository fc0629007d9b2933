// Package main implements the scd command.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	scd "github.com/bcomnes/scd/pkg"
	"github.com/bcomnes/scd/pkg/logging"
	"github.com/bcomnes/scd/pkg/scheme"
)

const name = "scd"

func init() {
	// -v is taken by --verbose.
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the scd version and exit",
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     "Propagate a project version string into the files that mention it",
		UsageText: name + " [options] [FILE_PATH...]",
		Description: `Reads the version and the list of target files from a configuration file
(.scd.json, .scd.yaml, .scd.toml and their undotted variants, discovered by
walking up from the working directory) and rewrites every occurrence matched
by the configured search patterns with the rendered replacement.

When FILE_PATH arguments are given only those configured files are processed.`,
		Version:                   Version,
		Writer:                    stdout,
		ErrWriter:                 stderr,
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the configuration file (default: discovered)",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "show what would change without writing any file",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "log at debug level",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log at info level",
			},
			&cli.StringSliceFlag{
				Name:    "group",
				Aliases: []string{"g"},
				Usage:   "only process files in this configured group (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:    "extra-context",
				Aliases: []string{"x"},
				Usage:   "add key=value to the template context (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "print-context",
				Usage: "print the version context as YAML and exit",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: "text",
				Usage: "log output format (text or json)",
				Validator: func(s string) error {
					if s != "text" && s != "json" {
						return fmt.Errorf("unsupported log format: %q", s)
					}
					return nil
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.SetDefault(logging.Options{
				Module:  name,
				Version: Version,
				Level:   logLevel(cmd),
				Format:  cmd.String("log-format"),
				Writer:  stderr,
			})

			extra, err := parseExtraContext(cmd.StringSlice("extra-context"))
			if err != nil {
				return err
			}

			opts := scd.Options{
				ConfigPath:   cmd.String("config"),
				Files:        cmd.Args().Slice(),
				Groups:       cmd.StringSlice("group"),
				ExtraContext: extra,
			}

			if cmd.Bool("print-context") {
				plan, err := scd.Prepare(ctx, opts)
				if err != nil {
					return err
				}
				return printContext(stdout, plan.Context)
			}

			var meta scd.RunMeta
			if cmd.Bool("dry-run") {
				meta, err = scd.DryRun(ctx, opts)
			} else {
				meta, err = scd.Run(ctx, opts)
			}
			if err != nil {
				return err
			}

			slog.Debug("run complete", "config", meta.ConfigPath, "updated", len(meta.UpdatedFiles))
			printSummary(stdout, meta)
			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// logLevel maps the verbosity flags to a level name. With neither flag the
// level is left empty so LOG_LEVEL can still apply.
func logLevel(cmd *cli.Command) string {
	switch {
	case cmd.Bool("debug"):
		return "debug"
	case cmd.Bool("verbose"):
		return "info"
	default:
		return ""
	}
}

// parseExtraContext turns key=value pairs into a context map. Values are kept
// as text.
func parseExtraContext(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	extra := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid extra context %q: expected key=value", pair)
		}
		if _, dup := extra[key]; dup {
			return nil, fmt.Errorf("extra context key %q given more than once", key)
		}
		extra[key] = value
	}
	return extra, nil
}

func printContext(w io.Writer, ctx *scheme.Context) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ctx); err != nil {
		return fmt.Errorf("failed to encode context: %w", err)
	}
	return enc.Close()
}

func printSummary(w io.Writer, meta scd.RunMeta) {
	if meta.DryRun {
		fmt.Fprintln(w, "Dry run complete, no files were modified.")
	} else {
		fmt.Fprintln(w, "Version substitution complete.")
	}
	fmt.Fprintf(w, "Config:       %s\n", meta.ConfigPath)
	fmt.Fprintf(w, "Scheme:       %s\n", meta.Scheme)
	fmt.Fprintf(w, "Base Version: %s\n", meta.BaseVersion)
	fmt.Fprintf(w, "Full Version: %s\n", meta.FullVersion)

	if len(meta.UpdatedFiles) == 0 {
		fmt.Fprintln(w, "No files needed changes.")
		return
	}
	if meta.DryRun {
		fmt.Fprintln(w, "Files that would be updated:")
	} else {
		fmt.Fprintln(w, "Files updated:")
	}
	for _, res := range meta.Results {
		if !res.Changed {
			continue
		}
		fmt.Fprintf(w, "  %s\n", res.Name)
		if !meta.DryRun {
			continue
		}
		for _, c := range res.Changes {
			fmt.Fprintf(w, "    %d: -%s\n", c.Line, c.Before)
			fmt.Fprintf(w, "    %d: +%s\n", c.Line, c.After)
		}
	}
}
