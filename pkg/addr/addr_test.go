package addr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanjohnson-usu/cuberadio/pkg/netlayer"
	"github.com/jordanjohnson-usu/cuberadio/pkg/trx"
)

func TestTableFromMaps(t *testing.T) {
	table := New(
		map[netlayer.Addr]trx.Addr{0x0A: 0xCAFEF00D},
		map[uint8]netlayer.Addr{0x3C: 0x0A},
	)

	dl, ok := table.ResolveDLAddr(0x0A)
	require.True(t, ok)
	assert.Equal(t, trx.Addr(0xCAFEF00D), dl)

	net, ok := table.ResolveNetAddr(0x3C)
	require.True(t, ok)
	assert.Equal(t, netlayer.Addr(0x0A), net)

	_, ok = table.ResolveNetAddr(0xFF)
	assert.False(t, ok)
}

func TestLoadINI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "addresses.ini")
	contents := "[addresses]\n0x0A = 0xCAFEF00D\n0x0B = 0xCAFEF00E\n\n[ports]\n0x3C = 0x0A\n0x0A = 0x0B\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	table, err := LoadINI(path)
	require.NoError(t, err)

	dl, ok := table.ResolveDLAddr(0x0B)
	require.True(t, ok)
	assert.Equal(t, trx.Addr(0xCAFEF00E), dl)

	net, ok := table.ResolveNetAddr(0x0A)
	require.True(t, ok)
	assert.Equal(t, netlayer.Addr(0x0B), net)
}
