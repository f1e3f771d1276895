package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pkgbuild/pkg/entry"
)

func entryCmd(globals *globalFlags) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "entry <target>",
		Short: "Print the artifact a host program loads for a target",
		Long: `Print the CommonJS artifact selected for a target: <target>.cjs.prod.js
when NODE_ENV is production, <target>.cjs.js otherwise.

Examples:
  pkgbuild entry cli
  NODE_ENV=production pkgbuild entry cli`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(globals.configPath)
			if err != nil {
				return err
			}
			return runEntry(p, args[0], mode)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Override NODE_ENV (production or development)")

	return cmd
}

func runEntry(p *project, name, mode string) error {
	// The catalog is checked so a typo is reported instead of printing a
	// path that can never exist.
	if _, err := p.catalog.Manifest(name); err != nil {
		return err
	}

	m := entry.ModeFromEnv()
	if mode != "" {
		m = entry.ParseMode(mode)
	}

	e := entry.New(m, p.catalog.DistDir(name), name)
	fmt.Fprintln(stdout, e.Path())
	if !e.Exists() {
		warn("%s has not been built yet", e.Filename())
	}
	return nil
}
