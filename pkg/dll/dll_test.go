package dll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanjohnson-usu/cuberadio/internal/radiotest"
	"github.com/jordanjohnson-usu/cuberadio/pkg/trx"
)

func TestTxRxRoundTrip(t *testing.T) {
	medium := radiotest.NewMedium()
	a := New(medium.NewLink(1))
	b := New(medium.NewLink(2))

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, a.Tx(payload, 2))

	buf := make([]byte, MaxPayloadLen)
	n, err := b.Rx(buf, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, MaxPayloadLen, n)
	assert.Equal(t, payload, buf[:len(payload)])
}

func TestRxTimeout(t *testing.T) {
	medium := radiotest.NewMedium()
	b := New(medium.NewLink(2))

	buf := make([]byte, MaxPayloadLen)
	_, err := b.Rx(buf, 10*time.Millisecond)
	assert.ErrorIs(t, err, trx.ErrTimeout)
}

func TestTxRejectsOversizedPayload(t *testing.T) {
	medium := radiotest.NewMedium()
	a := New(medium.NewLink(1))
	err := a.Tx(make([]byte, MaxPayloadLen+1), 2)
	assert.Error(t, err)
}

func TestRxClampsToSmallerBuffer(t *testing.T) {
	medium := radiotest.NewMedium()
	a := New(medium.NewLink(1))
	b := New(medium.NewLink(2))

	require.NoError(t, a.Tx([]byte{1, 2, 3, 4, 5}, 2))

	buf := make([]byte, 3)
	n, err := b.Rx(buf, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, buf[:n])
}
