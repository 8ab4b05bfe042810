// Package sanitizer normalizes user- and provider-supplied strings before
// they are compared or persisted.
//
// Functions are pure and return the cleaned value; none of them validate.
// Pair them with explicit validation where rejecting input matters.
package sanitizer
