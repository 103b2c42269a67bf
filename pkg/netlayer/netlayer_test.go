package netlayer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanjohnson-usu/cuberadio/internal/radiotest"
	"github.com/jordanjohnson-usu/cuberadio/pkg/dll"
	"github.com/jordanjohnson-usu/cuberadio/pkg/trx"
)

func directDL(medium *radiotest.Medium) map[Addr]trx.Addr {
	return map[Addr]trx.Addr{1: 1, 2: 2, 3: 3}
}

func resolverFor(dl map[Addr]trx.Addr) ResolveDLAddrFunc {
	return func(a Addr) (trx.Addr, bool) {
		v, ok := dl[a]
		return v, ok
	}
}

func TestTxRxDirect(t *testing.T) {
	medium := radiotest.NewMedium()
	dlMap := directDL(medium)

	a := New(dll.New(medium.NewLink(1)), 1, NewRoutingTable(map[Addr]Addr{2: 2}), resolverFor(dlMap))
	b := New(dll.New(medium.NewLink(2)), 2, NewRoutingTable(map[Addr]Addr{1: 1}), resolverFor(dlMap))

	require.NoError(t, a.Tx([]byte("hi"), 2, 1))

	buf := make([]byte, MaxSegmentLen)
	n, err := b.Rx(buf, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(buf[:n]))
}

func TestTxNoRoute(t *testing.T) {
	medium := radiotest.NewMedium()
	a := New(dll.New(medium.NewLink(1)), 1, NewRoutingTable(nil), resolverFor(directDL(medium)))
	err := a.Tx([]byte("hi"), 9, 1)
	assert.ErrorIs(t, err, ErrNoRoute)
}

// TestForwarding exercises spec.md scenario S4: A (0x01) sends to C (0x03)
// via forwarder B (0x02); B's receive transparently relays the packet on
// and only C delivers it upward.
func TestForwarding(t *testing.T) {
	medium := radiotest.NewMedium()
	dlMap := directDL(medium)

	a := New(dll.New(medium.NewLink(1)), 1, NewRoutingTable(map[Addr]Addr{3: 2}), resolverFor(dlMap))
	b := New(dll.New(medium.NewLink(2)), 2, NewRoutingTable(map[Addr]Addr{3: 3}), resolverFor(dlMap))
	c := New(dll.New(medium.NewLink(3)), 3, NewRoutingTable(nil), resolverFor(dlMap))

	require.NoError(t, a.Tx([]byte("relay me"), 3, 1))

	// B's Rx loop should transparently forward without ever returning to
	// its own caller (no delivery, dest != b's address).
	go func() {
		buf := make([]byte, MaxSegmentLen)
		_, _ = b.Rx(buf, 200*time.Millisecond)
	}()

	buf := make([]byte, MaxSegmentLen)
	n, err := c.Rx(buf, 200*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "relay me", string(buf[:n]))
}

func TestRxNeverDeliversForeignPacketEvenWhenForwardingFails(t *testing.T) {
	medium := radiotest.NewMedium()
	dlMap := directDL(medium)

	// A thinks B (dl addr 2) is the next hop toward 3, but B has no route
	// configured for 3: B's forward attempt fails and must be swallowed,
	// not delivered upward and not surfaced as a local receive error.
	a := New(dll.New(medium.NewLink(1)), 1, NewRoutingTable(map[Addr]Addr{3: 2}), resolverFor(dlMap))
	b := New(dll.New(medium.NewLink(2)), 2, NewRoutingTable(nil), resolverFor(dlMap))

	require.NoError(t, a.Tx([]byte("not for b"), 3, 1))

	buf := make([]byte, MaxSegmentLen)
	_, err := b.Rx(buf, 20*time.Millisecond)
	assert.ErrorIs(t, err, trx.ErrTimeout)
}
