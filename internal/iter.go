// Package internal holds helpers shared between the minvm packages.
package internal

import (
	"iter"
)

// IterSeq2Concat concatenates multiple key/value iterators into one.
// Later sequences may repeat keys of earlier ones; consumers building a
// map see the last value.
func IterSeq2Concat[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for key, value := range seq {
				if !yield(key, value) {
					return
				}
			}
		}
	}
}
