package registry

import (
	"crypto/sha256"
	"encoding/hex"
)

// peerIDLength is the length of a derived peer identifier in hex chars.
const peerIDLength = 32

// ResolvePeerID returns the caller-supplied identifier verbatim when
// present, so a peer can reclaim its slot across reconnects. Otherwise
// it derives a deterministic identifier from the peer's declared name,
// endpoint, and observed source address: a peer re-registering from
// the same network location collides with its own prior record instead
// of accumulating duplicates. Distinct peers sharing all three inputs
// resolve to the same identity; pass an explicit peer ID to avoid that.
func ResolvePeerID(supplied, name, endpoint, sourceAddress string) string {
	if supplied != "" {
		return supplied
	}

	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write([]byte(sourceAddress))
	return hex.EncodeToString(h.Sum(nil))[:peerIDLength]
}
