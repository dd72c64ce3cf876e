package icsrule

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/quinspect/quinspect/addrset"
)

// wireAddrList is the on-disk shape of an address accept/except list:
// each entry is either an exact address ("10.0.0.1"), a CIDR
// ("10.0.0.0/24"), or an inclusive range ("10.0.0.1-10.0.0.10"), per
// original_source's rule_utils.rs custom string-form deserializer.
type wireAddrList struct {
	Accept []string `json:"accept,omitempty"`
	Except []string `json:"except,omitempty"`
}

func decodeAddressList(raw json.RawMessage) (*addrset.List, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var w wireAddrList
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	list := &addrset.List{}
	if w.Accept != nil {
		set, err := buildAddressSet(w.Accept)
		if err != nil {
			return nil, err
		}
		list.Accept = set
	}
	if w.Except != nil {
		set, err := buildAddressSet(w.Except)
		if err != nil {
			return nil, err
		}
		list.Except = set
	}
	return list, nil
}

func buildAddressSet(entries []string) (*addrset.AddressSet, error) {
	set := addrset.NewAddressSet()
	for _, e := range entries {
		switch {
		case strings.Contains(e, "/"):
			pfx, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("bad CIDR %q: %w", e, err)
			}
			set.AddCIDR(pfx)
		case strings.Contains(e, "-"):
			parts := strings.SplitN(e, "-", 2)
			start, err := netip.ParseAddr(strings.TrimSpace(parts[0]))
			if err != nil {
				return nil, fmt.Errorf("bad range start %q: %w", e, err)
			}
			end, err := netip.ParseAddr(strings.TrimSpace(parts[1]))
			if err != nil {
				return nil, fmt.Errorf("bad range end %q: %w", e, err)
			}
			set.AddRange(start, end)
		default:
			addr, err := netip.ParseAddr(e)
			if err != nil {
				return nil, fmt.Errorf("bad address %q: %w", e, err)
			}
			set.AddExact(addr)
		}
	}
	return set, nil
}

// wirePortList mirrors wireAddrList for ports: each entry is an exact
// port ("502") or an inclusive range ("1000-2000").
type wirePortList struct {
	Accept []string `json:"accept,omitempty"`
	Except []string `json:"except,omitempty"`
}

func decodePortList(raw json.RawMessage) (*addrset.PortList, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var w wirePortList
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	list := &addrset.PortList{}
	if w.Accept != nil {
		set, err := buildPortSet(w.Accept)
		if err != nil {
			return nil, err
		}
		list.Accept = set
	}
	if w.Except != nil {
		set, err := buildPortSet(w.Except)
		if err != nil {
			return nil, err
		}
		list.Except = set
	}
	return list, nil
}

func buildPortSet(entries []string) (*addrset.PortSet, error) {
	set := addrset.NewPortSet()
	for _, e := range entries {
		if strings.Contains(e, "-") {
			parts := strings.SplitN(e, "-", 2)
			var lo, hi uint16
			if _, err := fmt.Sscanf(strings.TrimSpace(parts[0]), "%d", &lo); err != nil {
				return nil, fmt.Errorf("bad port range %q: %w", e, err)
			}
			if _, err := fmt.Sscanf(strings.TrimSpace(parts[1]), "%d", &hi); err != nil {
				return nil, fmt.Errorf("bad port range %q: %w", e, err)
			}
			set.AddRange(lo, hi)
			continue
		}
		var port uint16
		if _, err := fmt.Sscanf(strings.TrimSpace(e), "%d", &port); err != nil {
			return nil, fmt.Errorf("bad port %q: %w", e, err)
		}
		set.AddExact(port)
	}
	return set, nil
}
