// Package state keeps per-user dialog sessions behind a small Store
// interface with in-memory and Redis backends.
package state
