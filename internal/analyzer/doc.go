// Package analyzer runs the right parser for a disc file or disc root,
// consulting the result cache when one is configured, and scans whole disc
// trees with a bounded worker pool.
package analyzer
