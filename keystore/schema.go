package keystore

import "encoding/binary"

// Key prefixes for the database schema. Each record type uses a distinct
// single-byte prefix to avoid collisions.
var (
	curveKey   = []byte("c") // c -> curve name
	paramsKey  = []byte("p") // p -> P || mpk
	secretKey  = []byte("m") // m -> sealed master secret
	userPrefix = []byte("u") // u + id -> sealed user key
	countKey   = []byte("n") // n -> issued keys (8 bytes BE)
)

// userKey = userPrefix + id
func userKey(id string) []byte {
	return append(append([]byte{}, userPrefix...), id...)
}

func encodeCount(n uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, n)
	return enc
}

func decodeCount(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
