// Package normalize rewrites decoded record trees into canonical shape:
// identifier lists in archive order, wrapper sets dissolved into their
// parents and a root wrapper split into top-level records.
package normalize
