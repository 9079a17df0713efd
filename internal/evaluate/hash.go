// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evaluate

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash digests the current source and target text of a translation.
// A stored score record is valid exactly while its hash equals this value;
// any edit to either side changes the hash and forces re-evaluation.
//
// The full digest is stored rather than a truncated prefix: the extra bytes
// are cheap and make collisions a non-concern.
func ContentHash(source, target string) string {
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte("|"))
	h.Write([]byte(target))
	return hex.EncodeToString(h.Sum(nil))
}
