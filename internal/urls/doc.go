// Package urls holds the documentation links printed by the command line
// tool, so they can be updated in one place.
package urls
