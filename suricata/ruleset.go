package suricata

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/cespare/xxhash"

	"github.com/quinspect/quinspect/internal/logx"
)

// RuleSet holds parsed signatures bucketed by transport in insertion
// order, matching original_source's rule.rs split between TcpSurule
// and UdpSurule collections evaluated independently per packet.
type RuleSet struct {
	tcpRules []*Surule
	udpRules []*Surule
	seen     map[uint64]struct{}
	Flows    *FlowStore
}

// NewRuleSet builds an empty set with its own FlowStore.
func NewRuleSet() *RuleSet {
	return &RuleSet{seen: make(map[uint64]struct{}), Flows: NewFlowStore()}
}

// LoadRules parses one rule per non-empty, non-comment line of text.
// A rule whose (sid,rev) pair was already loaded is skipped, matching
// the idempotent-reload behavior the ICS ruleset also provides; the
// dedup key is hashed with xxhash rather than compared by sid/rev pair
// directly so reload cost stays O(1) per rule regardless of ruleset
// size.
func (rs *RuleSet) LoadRules(text string) error {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule, err := ParseRule(line)
		if err != nil {
			return fmt.Errorf("suricata: line %d: %w", lineNo, err)
		}
		key := dedupKey(rule)
		if _, ok := rs.seen[key]; ok {
			logx.Debug(logx.SelSuricata, "skip duplicate sid=%d rev=%d", rule.Sid, rule.Rev)
			continue
		}
		rs.seen[key] = struct{}{}
		rs.insert(rule)
	}
	return scanner.Err()
}

func dedupKey(r *Surule) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%d:%d", r.Sid, r.Rev))
}

func (rs *RuleSet) insert(r *Surule) {
	switch r.Transport {
	case TransportTCP:
		rs.tcpRules = append(rs.tcpRules, r)
	case TransportUDP:
		rs.udpRules = append(rs.udpRules, r)
	}
	logx.Debug(logx.SelSuricata, "loaded sid=%d action=%v", r.Sid, r.Action)
}

// Detect evaluates p against every rule in p.Transport's bucket, in
// insertion order, returning the first hit.
func (rs *RuleSet) Detect(p Packet) (*Surule, bool) {
	bucket := rs.tcpRules
	if p.Transport == TransportUDP {
		bucket = rs.udpRules
	}
	for _, r := range bucket {
		if r.Detect(p, rs.Flows) {
			return r, true
		}
	}
	return nil, false
}

// Len reports the total number of loaded rules across both buckets.
func (rs *RuleSet) Len() int {
	return len(rs.tcpRules) + len(rs.udpRules)
}
