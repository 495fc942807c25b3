package contract

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

func TestDeltaEncoding(t *testing.T) {
	d := Delta{
		Op:      jetton.OpBurnNotification,
		QueryID: 0xdeadbeef,
		Amount:  uint256.NewInt(123456789),
		Peer:    actorAddr(3),
	}
	raw, err := d.encode()
	require.NoError(t, err)
	got, err := DecodeDelta(raw)
	require.NoError(t, err)
	require.Equal(t, d.Op, got.Op)
	require.Equal(t, d.QueryID, got.QueryID)
	require.True(t, d.Amount.Eq(got.Amount))
	require.True(t, jetton.SameAddress(d.Peer, got.Peer))

	_, err = DecodeDelta([]byte("garbage"))
	require.Error(t, err)
}

func TestDeltaLT(t *testing.T) {
	lt, ok := DeltaLT(deltaKey(1 << 40))
	require.True(t, ok)
	require.Equal(t, uint64(1<<40), lt)

	_, ok = DeltaLT("pending/short")
	require.False(t, ok)
	_, ok = DeltaLT("other/12345678")
	require.False(t, ok)
}
