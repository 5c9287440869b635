// Package fake is an in-memory remote service.
//
// It implements every collaborator of package remote over maps seeded from
// YAML fixtures, paginates lists like the real service (1-based pages,
// fixed page size), and supports failure injection and call gating so
// tests can reproduce remote errors and interleavings.
package fake
