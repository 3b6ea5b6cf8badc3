// Package bencode owns the bencode value tree and its wire codec.
//
// Ownership boundary:
// - value tree (Int, Bytes, List, Dict) and structural equality
// - decoder with explicit remaining-input threading
// - encoder for the canonical form
package bencode
