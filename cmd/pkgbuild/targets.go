package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func targetsCmd(globals *globalFlags) *cobra.Command {
	var details bool

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List buildable targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(globals.configPath)
			if err != nil {
				return err
			}
			return runTargets(p, details)
		},
	}

	cmd.Flags().BoolVarP(&details, "long", "l", false, "Show version, env and formats of each target")

	return cmd
}

func runTargets(p *project, details bool) error {
	for _, name := range p.catalog.Names() {
		if !details {
			fmt.Fprintln(stdout, name)
			continue
		}

		m, err := p.catalog.Manifest(name)
		if err != nil {
			return err
		}
		line := name
		if m.Version != "" {
			line += "@" + m.Version
		}
		if env := m.Env(); env != "" {
			line += " env=" + env
		}
		if m.BuildOptions != nil && len(m.BuildOptions.Formats) > 0 {
			line += " formats=" + strings.Join(m.BuildOptions.Formats, ",")
		}
		fmt.Fprintln(stdout, line)
	}
	return nil
}
