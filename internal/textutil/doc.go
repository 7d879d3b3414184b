// Package textutil provides text helpers for turning catalog metadata into
// safe filesystem names.
package textutil
