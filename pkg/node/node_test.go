package node

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanjohnson-usu/cuberadio/internal/radiotest"
	"github.com/jordanjohnson-usu/cuberadio/internal/vclock"
	"github.com/jordanjohnson-usu/cuberadio/pkg/addr"
	"github.com/jordanjohnson-usu/cuberadio/pkg/netlayer"
	"github.com/jordanjohnson-usu/cuberadio/pkg/transport"
	"github.com/jordanjohnson-usu/cuberadio/pkg/trx"
)

func cfgFor(port uint8, netAddr netlayer.Addr, routes *netlayer.RoutingTable, table *addr.Table) *Config {
	return &Config{
		Port:         port,
		NetAddr:      netAddr,
		RoutingTable: routes,
		AddrTable:    table,
	}
}

func TestCubeSendReceive(t *testing.T) {
	clk := vclock.New()
	medium := radiotest.NewMediumWithClock(clk)
	table := addr.New(map[netlayer.Addr]trx.Addr{1: 1, 2: 2}, map[uint8]netlayer.Addr{10: 1, 20: 2})

	a, err := NewWithTransceiver(cfgFor(10, 1, netlayer.NewRoutingTable(map[netlayer.Addr]netlayer.Addr{2: 2}), table), medium.NewLink(1), clk)
	require.NoError(t, err)
	b, err := NewWithTransceiver(cfgFor(20, 2, netlayer.NewRoutingTable(map[netlayer.Addr]netlayer.Addr{1: 1}), table), medium.NewLink(2), clk)
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- a.Send([]byte("cube to cube"), 20) }()

	message, srcPort, err := b.Receive(2 * transport.AckTimeout)
	require.NoError(t, err)
	require.NoError(t, <-errc)
	assert.Equal(t, uint8(10), srcPort)
	assert.Equal(t, "cube to cube", string(message))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	routesPath := filepath.Join(dir, "routes.ini")
	require.NoError(t, os.WriteFile(routesPath, []byte("[routes]\n0x02 = 0x02\n"), 0o644))

	addressesPath := filepath.Join(dir, "addresses.ini")
	require.NoError(t, os.WriteFile(addressesPath, []byte("[addresses]\n0x01 = 0x00000001\n0x02 = 0x00000002\n\n[ports]\n0x0A = 0x01\n"), 0o644))

	configPath := filepath.Join(dir, "cube.ini")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"[node]\nport = 0x0A\nnet_addr = 0x01\ntrx_backend = virtual\ntrx_channel = localhost:9000\nroutes = routes.ini\naddresses = addresses.ini\n",
	), 0o644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x0A), cfg.Port)
	assert.Equal(t, netlayer.Addr(0x01), cfg.NetAddr)
	assert.Equal(t, "virtual", cfg.TRXBackend)

	dl, ok := cfg.AddrTable.ResolveDLAddr(0x02)
	require.True(t, ok)
	assert.EqualValues(t, 0x02, dl)

	nextHop, ok := cfg.RoutingTable.NextHop(0x02)
	require.True(t, ok)
	assert.Equal(t, netlayer.Addr(0x02), nextHop)
}
