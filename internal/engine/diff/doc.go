// Package diff computes the difference between two texts as a patch.
//
// Texts are first compared line by line with a SequenceMatcher. Each
// replaced block of lines is then refined with a Myers diff over its
// characters, so an edit inside a long line produces a small hunk rather
// than a whole-line replacement. Blocks too large to refine are emitted
// as a single hunk.
package diff
