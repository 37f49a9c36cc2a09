package collab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprintFlow_DeterministicForSameTuple(t *testing.T) {
	a := FingerprintFlow("host-a", "host-b", 1, 2)
	b := FingerprintFlow("host-a", "host-b", 1, 2)
	require.Equal(t, a, b)
}

func TestFingerprintFlow_DiffersAcrossTuples(t *testing.T) {
	base := FingerprintFlow("host-a", "host-b", 1, 2)

	require.NotEqual(t, base, FingerprintFlow("host-a", "host-c", 1, 2), "different dst must change the fingerprint")
	require.NotEqual(t, base, FingerprintFlow("host-a", "host-b", 2, 2), "different srcPort must change the fingerprint")
	require.NotEqual(t, base, FingerprintFlow("host-a", "host-b", 1, 3), "different dstPort must change the fingerprint")
}
