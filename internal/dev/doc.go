// Package dev runs a target's bundler in watch mode and, optionally, a
// small development server for its output.
//
// The watch bundler is a long-lived child process started in its own
// process group, so stopping it also stops anything it spawned. It runs
// until the context is cancelled or the bundler exits.
//
// # Server
//
// With serving enabled, a chi router exposes:
//
//	/dist/*               the target's dist directory
//	/_pkgbuild/status     JSON status of the session
//	/_pkgbuild/reload     WebSocket live-reload endpoint
//	/_pkgbuild/client.js  browser script that connects to the reload endpoint
//
// A polling watcher over the dist directory notifies connected browsers
// whenever the bundler writes new output. Messages are JSON-encoded:
//
//	{"type": "reload", "file": "cli.global.js"}
//
// # Usage
//
//	session := dev.NewSession(dev.Options{
//	    Target:  "cli",
//	    Command: "rollup",
//	    Args:    []string{"-wc"},
//	    Env:     buildenv.Watch("cli", "", "global", commit),
//	    DistDir: catalog.DistDir("cli"),
//	    Serve:   true,
//	    Addr:    "localhost:3000",
//	})
//	err := session.Run(ctx)
package dev
