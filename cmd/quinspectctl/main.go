// Command quinspectctl is a thin wiring example: load an ICS rule file
// and a Suricata-style rule file, then run the combined Inspector over
// frames read from stdin, one length-prefixed frame at a time. Flag
// parsing and a real capture front end are out of scope (spec §1); this
// exists to show how an embedder assembles the pieces, not to be a
// production CLI.
package main

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/negbie/logp"

	quinspect "github.com/quinspect/quinspect"
	"github.com/quinspect/quinspect/dissect"
	"github.com/quinspect/quinspect/icsrule"
)

func main() {
	logp.Info("quinspectctl starting")

	ins := quinspect.NewInspector(map[string]icsrule.ArgDecoder{}, 0)

	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			logp.Err("read ics rules: %v", err)
			os.Exit(1)
		}
		if err := ins.ICS.LoadRules(data); err != nil {
			logp.Err("load ics rules: %v", err)
			os.Exit(1)
		}
	}
	if len(os.Args) > 2 {
		data, err := os.ReadFile(os.Args[2])
		if err != nil {
			logp.Err("read suricata rules: %v", err)
			os.Exit(1)
		}
		if err := ins.Suricata.LoadRules(string(data)); err != nil {
			logp.Err("load suricata rules: %v", err)
			os.Exit(1)
		}
	}

	var lenBuf [4]byte
	for {
		if _, err := io.ReadFull(os.Stdin, lenBuf[:]); err != nil {
			break
		}
		n := binary.BigEndian.Uint32(lenBuf[:])
		frame := make([]byte, n)
		if _, err := io.ReadFull(os.Stdin, frame); err != nil {
			break
		}
		v := ins.Inspect(frame, dissect.StopPoint(nil))
		for _, alert := range v.Alerts {
			logp.Info("alert engine=%d rule=%d action=%s msg=%s", alert.Engine, alert.RuleID, alert.Action, alert.Msg)
		}
	}
}
