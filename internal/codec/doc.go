// Package codec holds the pure translation layers under a Buffer: the
// byte/CellState quantization, offset/Address translation, and the
// length-prefixed UTF-8 and UTF-16 string encodings.
//
// Nothing here touches a Medium. Every function is deterministic and safe
// for concurrent use.
package codec
