// Package textio moves buffer text between files and strings.
//
// It owns everything the buffer core leaves to its host: charset
// transcoding, byte order marks, encoding names, and following a file on
// disk so that a buffer is reloaded when another program rewrites it.
//
// Encoding names are normalized before lookup, so "utf8", "UTF-8" and
// "Utf_8" all resolve to the same charset:
//
//	textio.NormalizeEncoding("iso8859_1") // "ISO-8859-1"
//	textio.NormalizeEncoding("shiftjis")  // "SHIFT_JIS"
package textio
