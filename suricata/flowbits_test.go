package suricata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlowStoreDefaults(t *testing.T) {
	store := NewFlowStore()
	assert.False(t, store.IsSet("never-seen"))
	assert.True(t, store.IsNotSet("never-seen"))
}

func TestFlowStoreToggleFromAbsent(t *testing.T) {
	store := NewFlowStore()
	store.Toggle("fresh")
	assert.True(t, store.IsSet("fresh"))
	store.Toggle("fresh")
	assert.False(t, store.IsSet("fresh"))
}

func TestFlowbitsNoAlertNeverFires(t *testing.T) {
	store := NewFlowStore()
	f := Flowbits{Cmd: FlowbitNoAlert, Name: "whatever"}
	assert.False(t, f.Check(store))
}

func TestFlowbitsSetUnsetIsSetIsNotSet(t *testing.T) {
	store := NewFlowStore()
	assert.True(t, Flowbits{Cmd: FlowbitSet, Name: "alarm"}.Check(store))
	assert.True(t, Flowbits{Cmd: FlowbitIsSet, Name: "alarm"}.Check(store))
	assert.False(t, Flowbits{Cmd: FlowbitIsNotSet, Name: "alarm"}.Check(store))
	assert.True(t, Flowbits{Cmd: FlowbitUnset, Name: "alarm"}.Check(store))
	assert.True(t, Flowbits{Cmd: FlowbitIsNotSet, Name: "alarm"}.Check(store))
}
