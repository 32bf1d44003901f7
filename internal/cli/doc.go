// Package cli implements the command-line interface for rastreio.
//
// The cli package provides the Cobra-based CLI with a track command that
// scrapes one or more tracking codes and prints the events (text/JSON), and a
// serve command that exposes the same pipeline over HTTP.
package cli
