/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: fingerprint.go
Description: Signal fingerprints. Hashes a capture after snapping every sample to its
bucket representative, so repeated captures of the same button at the same margin
usually share a fingerprint even though their raw durations jitter.
*/

package inference

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/kleascm/irprobe/pkg/timing"
	"github.com/zeebo/blake3"
)

// Fingerprint is a 32-byte BLAKE3 keyed digest of a normalized capture
type Fingerprint [32]byte

// String returns the full hex encoding
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns a compact reference suitable for file names and reports
func (f Fingerprint) Short() string {
	return "ir-" + hex.EncodeToString(f[:6])
}

// MarshalText encodes the fingerprint as hex
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// fingerprintKey is the BLAKE3 key for capture fingerprints, ASCII zero-padded to 32 bytes
var fingerprintKey = [32]byte{
	'i', 'r', 'p', 'r', 'o', 'b', 'e', '.', 'c', 'a', 'p', 't', 'u', 'r', 'e', '.',
	'v', '1', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// FingerprintCapture hashes timings with each mark and space replaced by the
// representative of its bucket. The margin is part of the hashed input.
func FingerprintCapture(timings []int, model *ProtocolModel) Fingerprint {
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		// Only returned for a key that is not 32 bytes long.
		panic("inference: BLAKE3 keyed hash initialization failed: " + err.Error())
	}

	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(model.Margin))
	hasher.Write(buf[:])

	for i, usecs := range timings {
		buckets := model.SpaceBuckets
		if isMarkPosition(i + 1) {
			buckets = model.MarkBuckets
		}
		normalized := usecs
		if rep, ok := timing.Lookup(buckets, usecs, model.Margin); ok {
			normalized = rep
		}
		binary.BigEndian.PutUint32(buf[:], uint32(normalized))
		hasher.Write(buf[:])
	}

	var fp Fingerprint
	copy(fp[:], hasher.Sum(nil))
	return fp
}
