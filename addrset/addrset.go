// Package addrset implements the accept/except address- and port-list
// semantics shared by the ICS whitelist engine and the Suricata
// signature engine (spec §4.5/§4.6, grounded on original_source's
// rule_utils.rs Ipv4Address/Ipv4Range and the Suricata crate's
// iplist.rs/portlist.rs check_accept/check_except split).
//
// CIDR and exact-address entries are backed by gaissmai/bart's
// longest-prefix-match trie — repurposed here not for routing but as a
// fast "is this address covered by any configured prefix" set, which is
// exactly the Contains query this package needs and bart already
// optimizes for cache-friendly bitmask operations.
package addrset

import (
	"net/netip"

	"github.com/gaissmai/bart"
)

// AddressSet is one accept or except list of IPv4/IPv6 addresses,
// supporting exact addresses, CIDR blocks (both stored in the bart
// trie as /32 or /128 and narrower prefixes), and explicit "a-b"
// ranges (kept in a side slice since bart only models prefix-aligned
// sets).
type AddressSet struct {
	prefixes bart.Table[struct{}]
	ranges   []addrRange
}

type addrRange struct {
	start netip.Addr
	end   netip.Addr
}

// NewAddressSet builds an empty set.
func NewAddressSet() *AddressSet {
	return &AddressSet{}
}

// AddCIDR inserts a CIDR block (or an exact address, passed as pfx.Bits
// == pfx.Addr().BitLen()).
func (s *AddressSet) AddCIDR(pfx netip.Prefix) {
	s.prefixes.Insert(pfx, struct{}{})
}

// AddExact inserts a single address as a host prefix.
func (s *AddressSet) AddExact(addr netip.Addr) {
	bits := 32
	if addr.Is6() {
		bits = 128
	}
	s.prefixes.Insert(netip.PrefixFrom(addr, bits), struct{}{})
}

// AddRange inserts an inclusive [start,end] address range, for the
// original's "a-b" range syntax that does not align to a CIDR block.
func (s *AddressSet) AddRange(start, end netip.Addr) {
	s.ranges = append(s.ranges, addrRange{start: start, end: end})
}

// Contains reports whether addr falls inside any CIDR/exact entry or
// any explicit range in the set.
func (s *AddressSet) Contains(addr netip.Addr) bool {
	if s.prefixes.Contains(addr) {
		return true
	}
	for _, r := range s.ranges {
		if inRange(addr, r.start, r.end) {
			return true
		}
	}
	return false
}

func inRange(addr, start, end netip.Addr) bool {
	if addr.Is4() != start.Is4() || addr.Is4() != end.Is4() {
		return false
	}
	return addr.Compare(start) >= 0 && addr.Compare(end) <= 0
}

// List is an accept/except pair over addresses, implementing spec
// §4.5/§4.6's match rule: "match iff (accept absent OR addr in some
// accept entry) AND (except absent OR addr NOT in any except entry)".
// A nil Accept means "any address" (the original's Option<Vec<..>> ==
// None case); a nil Except means "nothing excluded".
type List struct {
	Accept *AddressSet
	Except *AddressSet
}

// Check implements the accept/except match rule.
func (l *List) Check(addr netip.Addr) bool {
	if l == nil {
		return true
	}
	if l.Accept != nil && !l.Accept.Contains(addr) {
		return false
	}
	if l.Except != nil && l.Except.Contains(addr) {
		return false
	}
	return true
}
