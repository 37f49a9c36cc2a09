package collab

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// FingerprintFlow derives a stable 64-bit flow identifier from a 4-tuple,
// for collaborators (trace sink, telemetry) that want a deterministic flow
// label across process restarts instead of a process-local counter. Uses
// blake2b rather than a non-cryptographic hash because the pack's other
// examples reach for golang.org/x/crypto for exactly this kind of stable
// connection/flow identity derivation, not for bulk encryption.
func FingerprintFlow(srcAddr, dstAddr string, srcPort, dstPort uint16) uint64 {
	h, err := blake2b.New(8, nil)
	if err != nil {
		panic(fmt.Sprintf("nscc: blake2b.New(8): %v", err)) // only fails on bad key/size, both constant here
	}
	var portBuf [4]byte
	binary.BigEndian.PutUint16(portBuf[0:2], srcPort)
	binary.BigEndian.PutUint16(portBuf[2:4], dstPort)
	h.Write([]byte(srcAddr))
	h.Write([]byte(dstAddr))
	h.Write(portBuf[:])
	return binary.BigEndian.Uint64(h.Sum(nil))
}
