// Package graph provides the undirected, optionally weighted graphs the
// solver runs on, spin configurations over them, and cut evaluation.
//
// Nodes are indexed 0..N-1. The text format read by [Read] and written by
// [Write] numbers nodes from 1, matching the reduced sparse-matrix layout:
//
//	|V| |E|
//	u v weight
//	...
//
// A [Graph] is immutable once built by a [Builder] and is safe to share
// between goroutines. A [Configuration] is a plain slice owned by whoever
// created it; nothing in this package retains one.
package graph
