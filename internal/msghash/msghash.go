// Package msghash computes the stable 64-bit digest that keys catalog
// messages. The catalog compiler and the runtime must agree on the digest,
// so the function and its key are fixed for the life of the format.
package msghash

import "github.com/dchest/siphash"

// Fixed SipHash-2-4 key halves. Changing either value invalidates every
// compiled catalog.
const (
	k0 = 0x756d6c7320683634
	k1 = 0x6d65737361676573
)

// Sum returns the digest of a message identifier's raw UTF-8 bytes.
func Sum(id string) uint64 {
	return siphash.Hash(k0, k1, []byte(id))
}
