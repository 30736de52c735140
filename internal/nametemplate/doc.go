// Package nametemplate renders per-track output paths from a user template
// with <placeholder> substitution and filesystem-safe sanitization.
package nametemplate
