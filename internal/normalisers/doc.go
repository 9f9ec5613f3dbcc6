// Package normalisers provides implementations of the Normaliser interface
// for the file formats docmind ingests. Each normaliser knows how to extract
// text content from a specific MIME type.
//
// Normalisers are registered with a Registry at startup; the registry picks
// the highest-priority normaliser for each MIME type.
package normalisers
