package netlayer

import (
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/jordanjohnson-usu/cuberadio/internal/iniutil"
)

// RoutingTable is the per-node next_hop function of spec.md §4.2: a pure,
// total-over-the-configured-set lookup from a final destination address to
// the next-hop address. It is static for the life of the process (no
// dynamic routing, spec.md §1 Non-goals).
type RoutingTable struct {
	nextHop map[Addr]Addr
}

// NewRoutingTable builds a table directly from a compiled-in map, for
// nodes that hard-code their routes instead of loading them from a file.
func NewRoutingTable(nextHop map[Addr]Addr) *RoutingTable {
	table := make(map[Addr]Addr, len(nextHop))
	for k, v := range nextHop {
		table[k] = v
	}
	return &RoutingTable{nextHop: table}
}

// NextHop resolves the next-hop address for a final destination. ok is
// false when dest is not in the configured set; per SPEC_FULL.md's
// resolution of spec.md's next_hop open question, this is never a crash —
// callers turn it into ErrNoRoute.
func (r *RoutingTable) NextHop(dest Addr) (Addr, bool) {
	nh, ok := r.nextHop[dest]
	return nh, ok
}

// LoadRoutingTableINI reads a routing table from an INI file with a
// [routes] section mapping destination network addresses to next-hop
// network addresses, both as decimal or 0x-prefixed hex bytes:
//
//	[routes]
//	0x0C = 0x0B
//	10   = 3
//
// Modeled on gocanopen's pkg/od EDS parser, which loads its per-node
// object dictionary the same way (ini.Load then iterate keys).
func LoadRoutingTableINI(path string) (*RoutingTable, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("netlayer: load routing table: %w", err)
	}
	section, err := file.GetSection("routes")
	if err != nil {
		return nil, fmt.Errorf("netlayer: missing [routes] section: %w", err)
	}
	table := make(map[Addr]Addr)
	for _, key := range section.Keys() {
		dest, err := iniutil.ParseByteAddr(key.Name())
		if err != nil {
			return nil, fmt.Errorf("netlayer: routing table destination %q: %w", key.Name(), err)
		}
		nextHop, err := iniutil.ParseByteAddr(key.Value())
		if err != nil {
			return nil, fmt.Errorf("netlayer: routing table next-hop %q: %w", key.Value(), err)
		}
		table[Addr(dest)] = Addr(nextHop)
	}
	return &RoutingTable{nextHop: table}, nil
}
