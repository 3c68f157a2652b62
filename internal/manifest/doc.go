// Package manifest records what a generator run produced as a YAML report:
// one entry per package with the projections written into it.
package manifest
