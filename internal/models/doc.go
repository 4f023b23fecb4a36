// Package models contains data structures for the application's domain documents.
//
// Documents are stored as string-valued field maps (the document store's
// native shape); each type knows how to encode itself into fields and decode
// itself back. Timestamps use a fixed-width UTC layout so that lexical order
// of the encoded value equals chronological order, which the store's sorted
// queries rely on.
package models

import "time"

// TimeLayout is the fixed-width UTC encoding for document timestamps.
// Unlike RFC3339Nano it never drops trailing zeros, so encoded values
// compare lexically in chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// EncodeTime renders t in the store's sortable timestamp layout.
func EncodeTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// DecodeTime parses a stored timestamp. Returns the zero time on empty or
// malformed input rather than an error; a document written without the
// field simply sorts last.
func DecodeTime(s string) time.Time {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
