package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/pkgbuild/internal/size"
)

func sizeCmd(globals *globalFlags) *cobra.Command {
	var matchAll bool

	cmd := &cobra.Command{
		Use:   "size [targets...]",
		Short: "Report artifact sizes without building",
		Long: `Report the raw, gzip and brotli size of each target's production
browser artifact. Targets that have not been built are skipped.

Examples:
  pkgbuild size
  pkgbuild size image --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(globals.configPath)
			if err != nil {
				return err
			}
			return runSize(p, args, matchAll)
		},
	}

	cmd.Flags().BoolVarP(&matchAll, "all", "a", false, "Audit every package matching each name")

	return cmd
}

func runSize(p *project, names []string, matchAll bool) error {
	targets, err := p.catalog.Resolve(names, matchAll)
	if err != nil {
		return err
	}

	reports, err := size.New(p.catalog, size.Options{Artifact: p.cfg.ArtifactName}).AuditAll(targets)
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		warn("No built artifacts found; run pkgbuild build first")
		return nil
	}
	size.Fprint(stdout, reports)
	return nil
}
