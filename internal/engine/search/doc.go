// Package search finds text in a document.
//
// Regex search uses ECMAScript syntax through regexp2 with multiline
// anchors. Offsets and indices count characters (runes), never bytes.
// Matching sees the whole document, so anchors, word boundaries and
// lookaround behave at the edges of a search range as they would on the
// whole text. Only matches lying entirely inside the range are reported.
//
// Word search tokenizes a range into words and returns every distinct
// word containing a query as a case-insensitive subsequence, ranked by a
// pluggable Scorer.
package search
