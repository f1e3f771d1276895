// Package config provides configuration parsing for pkgbuild.
//
// The configuration is stored in pkgbuild.json at the monorepo root. The file
// is optional: a repository with a packages/ directory and no config file
// builds with the defaults below.
//
// # Configuration File Structure
//
//	{
//	  "packages": "packages",
//	  "bundler": {
//	    "command": "rollup",
//	    "args": ["-c"],
//	    "watchArgs": ["-wc"]
//	  },
//	  "revision": {
//	    "command": "git",
//	    "args": ["rev-parse", "HEAD"]
//	  },
//	  "audit": {
//	    "artifact": "{target}.esm-browser.prod.js"
//	  },
//	  "dev": {
//	    "port": 3000,
//	    "formats": "global",
//	    "defaultTarget": "image"
//	  },
//	  "report": {
//	    "bucket": "bundle-sizes",
//	    "key": "reports/{commit}.json",
//	    "region": "us-east-1"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Packages:", cfg.PackagesPath())
package config
