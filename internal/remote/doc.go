// Package remote declares the remote collaborators the stores call and the
// error taxonomy they report.
//
// The wire-level client is not part of this module; package fake provides
// an in-memory implementation for tests, scenarios and the CLI.
package remote
