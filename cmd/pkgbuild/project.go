package main

import (
	"path/filepath"

	"github.com/vango-dev/pkgbuild/internal/config"
	"github.com/vango-dev/pkgbuild/internal/target"
)

// project is the loaded configuration and target catalog of a monorepo.
type project struct {
	cfg     *config.Config
	catalog *target.Catalog
}

// loadProject loads configPath, or finds the monorepo root from the
// working directory when it is empty.
func loadProject(configPath string) (*project, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		abs, absErr := filepath.Abs(configPath)
		if absErr != nil {
			return nil, absErr
		}
		cfg, err = config.LoadFile(abs)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	catalog, err := target.LoadCatalog(cfg.PackagesPath())
	if err != nil {
		return nil, err
	}

	return &project{cfg: cfg, catalog: catalog}, nil
}
