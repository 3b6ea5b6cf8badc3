package schema

import (
	"fmt"

	"github.com/danmuck/bencode/internal/bencode"
)

// PieceHashLen is the size of one SHA-1 digest in the pieces string.
const PieceHashLen = 20

var (
	Metainfo = Schema{
		Name: "metainfo",
		Fields: []Requirement{
			{Key: "announce", Kind: bencode.KindBytes},
			{Key: "announce-list", Kind: bencode.KindList, Optional: true},
			{Key: "comment", Kind: bencode.KindBytes, Optional: true},
			{Key: "created by", Kind: bencode.KindBytes, Optional: true},
			{Key: "creation date", Kind: bencode.KindInt, Optional: true},
			{Key: "info", Kind: bencode.KindDict},
		},
	}

	Info = Schema{
		Name: "info",
		Fields: []Requirement{
			{Key: "name", Kind: bencode.KindBytes},
			{Key: "piece length", Kind: bencode.KindInt},
			{Key: "pieces", Kind: bencode.KindBytes},
			{Key: "length", Kind: bencode.KindInt, Optional: true},
			{Key: "files", Kind: bencode.KindList, Optional: true},
			{Key: "private", Kind: bencode.KindInt, Optional: true},
		},
	}

	File = Schema{
		Name: "file",
		Fields: []Requirement{
			{Key: "length", Kind: bencode.KindInt},
			{Key: "path", Kind: bencode.KindList},
		},
	}
)

// ValidateMetainfo checks the torrent metainfo layout: the outer dict, its
// info dict (single-file "length" xor multi-file "files") and each file entry.
// Piece hashes are only checked for length; verifying them is left to the
// content layer.
func ValidateMetainfo(v bencode.Value) error {
	if err := Validate(v, Metainfo); err != nil {
		return err
	}
	info, err := Path(v, "info")
	if err != nil {
		return err
	}
	if err := Validate(info, Info); err != nil {
		return err
	}
	d := info.(bencode.Dict)

	_, single := d["length"]
	files, multi := d["files"]
	if single == multi {
		return ValidationError{Schema: Info.Name, Reason: "exactly one of length or files required"}
	}
	if multi {
		for i, f := range files.(bencode.List) {
			if err := Validate(f, File); err != nil {
				return fmt.Errorf("files[%d]: %w", i, err)
			}
		}
	}

	pieces := d["pieces"].(bencode.Bytes)
	if len(pieces)%PieceHashLen != 0 {
		return ValidationError{
			Schema: Info.Name,
			Key:    "pieces",
			Reason: fmt.Sprintf("length %d not a multiple of %d", len(pieces), PieceHashLen),
		}
	}
	if n := d["piece length"].(bencode.Int); n <= 0 {
		return ValidationError{Schema: Info.Name, Key: "piece length", Reason: "must be positive"}
	}
	return nil
}
