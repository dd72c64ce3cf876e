package icsrule

import (
	"fmt"
	"sync"

	"github.com/segmentio/encoding/json"

	"github.com/quinspect/quinspect/internal/logx"
	"github.com/quinspect/quinspect/protocol"
)

// wireRule is the JSON-on-disk shape of a rule file entry. Args are
// loaded generically (RawArg kept as json.RawMessage) and resolved to
// a concrete icsrule.Arg by the caller-supplied ArgDecoder, since the
// Arg family is protocol-specific and this package does not hardcode a
// single wire schema for all ten protocol argument shapes.
type wireRule struct {
	RID       uint32          `json:"rid"`
	Msg       string          `json:"msg"`
	Action    string          `json:"action"`
	Direction string          `json:"direction"`
	SrcIP     json.RawMessage `json:"src_ip,omitempty"`
	SrcPort   json.RawMessage `json:"src_port,omitempty"`
	DstIP     json.RawMessage `json:"dst_ip,omitempty"`
	DstPort   json.RawMessage `json:"dst_port,omitempty"`
	ArgProto  string          `json:"arg_protocol,omitempty"`
	RawArg    json.RawMessage `json:"arg,omitempty"`
}

// ArgDecoder resolves a (protocol name, raw JSON) pair into a concrete
// Arg; callers register one per supported protocol family.
type ArgDecoder func(raw json.RawMessage) (Arg, error)

// RuleSet holds the loaded whitelist: an id->rule map for point lookup
// plus a naive-protocol-family index so detect() only scans rules that
// could possibly match a given flow's application protocol, per spec
// §4.5.
type RuleSet struct {
	mu        sync.RWMutex
	byID      map[uint32]*BasicRule
	byProto   map[protocol.ApplicationNaiveProtocol][]*BasicRule
	protoless []*BasicRule // rules with no Arg, matched against every flow
	goose     []*BasicRule // GOOSEArg rules, matched against Flow.Net directly
	sv        []*BasicRule // SVArg rules, matched against Flow.Trans directly
	decoders  map[string]ArgDecoder
}

// NewRuleSet builds an empty set with the given argument decoders
// keyed by the wire "arg_protocol" field value.
func NewRuleSet(decoders map[string]ArgDecoder) *RuleSet {
	return &RuleSet{
		byID:     make(map[uint32]*BasicRule),
		byProto:  make(map[protocol.ApplicationNaiveProtocol][]*BasicRule),
		decoders: decoders,
	}
}

// LoadRules parses a JSON array of rule entries and inserts them,
// matching original_source's load_rules semantics: a duplicate rid
// overwrites the previous rule (idempotent reload). A single decode
// error anywhere in the array fails the whole call and leaves the
// existing rule set untouched (spec §4.5/§7): every wire rule is
// decoded into a staging slice first, and only inserted once the
// entire array has validated successfully.
func (rs *RuleSet) LoadRules(data []byte) error {
	var wires []wireRule
	if err := json.Unmarshal(data, &wires); err != nil {
		return fmt.Errorf("icsrule: decode rule file: %w", err)
	}
	staged := make([]*BasicRule, 0, len(wires))
	for _, w := range wires {
		rule, err := rs.decodeRule(w)
		if err != nil {
			return fmt.Errorf("icsrule: rule %d: %w", w.RID, err)
		}
		staged = append(staged, rule)
	}
	for _, rule := range staged {
		rs.insert(rule)
	}
	return nil
}

func (rs *RuleSet) decodeRule(w wireRule) (*BasicRule, error) {
	action, err := parseAction(w.Action)
	if err != nil {
		return nil, err
	}
	dir, err := parseDirection(w.Direction)
	if err != nil {
		return nil, err
	}
	srcIP, err := decodeAddressList(w.SrcIP)
	if err != nil {
		return nil, err
	}
	dstIP, err := decodeAddressList(w.DstIP)
	if err != nil {
		return nil, err
	}
	srcPort, err := decodePortList(w.SrcPort)
	if err != nil {
		return nil, err
	}
	dstPort, err := decodePortList(w.DstPort)
	if err != nil {
		return nil, err
	}
	var arg Arg
	if w.ArgProto != "" {
		dec, ok := rs.decoders[w.ArgProto]
		if !ok {
			return nil, fmt.Errorf("no arg decoder registered for %q", w.ArgProto)
		}
		arg, err = dec(w.RawArg)
		if err != nil {
			return nil, err
		}
	}
	return &BasicRule{
		RID: w.RID, Msg: w.Msg, Action: action, Direction: dir,
		SrcIP: srcIP, SrcPort: srcPort, DstIP: dstIP, DstPort: dstPort,
		Arg: arg, Active: true,
	}, nil
}

func parseAction(s string) (Action, error) {
	switch s {
	case "allow":
		return ActionAllow, nil
	case "alert":
		return ActionAlert, nil
	case "drop":
		return ActionDrop, nil
	case "reject":
		return ActionReject, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

func parseDirection(s string) (Direction, error) {
	switch s {
	case "", "uni":
		return DirUni, nil
	case "bi":
		return DirBi, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

func (rs *RuleSet) insert(rule *BasicRule) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if old, ok := rs.byID[rule.RID]; ok {
		rs.removeFromIndexLocked(old)
	}
	rs.byID[rule.RID] = rule
	switch rule.Arg.(type) {
	case nil:
		rs.protoless = append(rs.protoless, rule)
	case GOOSEArg:
		rs.goose = append(rs.goose, rule)
	case SVArg:
		rs.sv = append(rs.sv, rule)
	default:
		fam := rule.Arg.Protocol()
		rs.byProto[fam] = append(rs.byProto[fam], rule)
	}
	logx.Debug(logx.SelICSRule, "loaded rule rid=%d action=%s", rule.RID, rule.Action)
}

func (rs *RuleSet) removeFromIndexLocked(rule *BasicRule) {
	switch rule.Arg.(type) {
	case nil:
		rs.protoless = removeRule(rs.protoless, rule.RID)
	case GOOSEArg:
		rs.goose = removeRule(rs.goose, rule.RID)
	case SVArg:
		rs.sv = removeRule(rs.sv, rule.RID)
	default:
		fam := rule.Arg.Protocol()
		rs.byProto[fam] = removeRule(rs.byProto[fam], rule.RID)
	}
}

func removeRule(list []*BasicRule, rid uint32) []*BasicRule {
	out := list[:0]
	for _, r := range list {
		if r.RID != rid {
			out = append(out, r)
		}
	}
	return out
}

// DeleteRule removes a rule by id.
func (rs *RuleSet) DeleteRule(rid uint32) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rule, ok := rs.byID[rid]; ok {
		rs.removeFromIndexLocked(rule)
		delete(rs.byID, rid)
	}
}

// ActivateRule and DeactivateRule flip a rule's Active flag without
// removing it from the index, matching the original's activate/
// deactivate distinction from outright deletion.
func (rs *RuleSet) ActivateRule(rid uint32) {
	rs.setActive(rid, true)
}

func (rs *RuleSet) DeactivateRule(rid uint32) {
	rs.setActive(rid, false)
}

func (rs *RuleSet) setActive(rid uint32, active bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rule, ok := rs.byID[rid]; ok {
		rule.Active = active
	}
}

// Detect evaluates f against every active candidate rule (protocol-less
// rules plus rules indexed under f's naive application family, if any)
// and returns the first match, matching the original's first-match
// semantics over insertion order within each bucket.
func (rs *RuleSet) Detect(f Flow) (*BasicRule, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	for _, r := range rs.protoless {
		if r.Active && r.Match(f) {
			return r, true
		}
	}
	if f.Net != nil && f.Net.GOOSE != nil {
		for _, r := range rs.goose {
			if r.Active && r.Match(f) {
				return r, true
			}
		}
	}
	if f.Trans != nil && f.Trans.SV != nil {
		for _, r := range rs.sv {
			if r.Active && r.Match(f) {
				return r, true
			}
		}
	}
	if f.App != nil {
		fam := f.App.Type.Application.Naive()
		for _, r := range rs.byProto[fam] {
			if r.Active && r.Match(f) {
				return r, true
			}
		}
	}
	return nil, false
}

// Len reports the number of loaded rules.
func (rs *RuleSet) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.byID)
}
