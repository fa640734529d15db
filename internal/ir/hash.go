package ir

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Hash computes the Action's content-addressed identity: a hex SHA-256
// digest over a canonical byte encoding of its fields in a fixed order - a
// recipe-variant tag, the recipe payload, each optional field as a presence
// byte followed by its UTF-8 bytes, and the restat flag. No map iteration
// participates, so the same Action always produces the same id regardless of
// how it was built.
func Hash(a *Action) string {
	h := sha256.New()
	writeByte(h, byte(a.Kind))
	switch a.Kind {
	case RecipeCommand:
		writeString(h, a.Command)
	case RecipeRuleRef:
		writeUint32(h, uint32(len(a.Rules)))
		for _, r := range a.Rules {
			writeString(h, r)
		}
	}
	writeOptString(h, a.Description)
	writeOptString(h, a.Depfile)
	writeOptString(h, a.DepsFormat)
	writeOptString(h, a.Pool)
	if a.Restat {
		writeByte(h, 1)
	} else {
		writeByte(h, 0)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeByte(h interface{ Write([]byte) (int, error) }, b byte) {
	_, _ = h.Write([]byte{b})
}

func writeUint32(h interface{ Write([]byte) (int, error) }, v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func writeString(h interface{ Write([]byte) (int, error) }, s string) {
	writeUint32(h, uint32(len(s)))
	_, _ = h.Write([]byte(s))
}

// writeOptString encodes an optional field as a presence byte, followed by
// the length-prefixed string when present. An empty string counts as absent,
// so an empty field and an unset one hash the same.
func writeOptString(h interface{ Write([]byte) (int, error) }, s string) {
	if s == "" {
		writeByte(h, 0)
		return
	}
	writeByte(h, 1)
	writeString(h, s)
}
