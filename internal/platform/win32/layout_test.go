package win32

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestLayoutStyles(t *testing.T) {
	assert.Equal(t, uint32(mbOK|mbIconInfo|mbTaskModal|mbSetForeground), basicLayout("OK").style)
	assert.Equal(t, uint32(mbOKCancel), confirmLayout("Yes", "No").style&0x0F)

	d := destructiveLayout("Delete", "Keep")
	assert.NotZero(t, d.style&mbDefButton2, "cancel must be the default button")
	assert.Equal(t, uint32(mbIconWarning), d.style&0xF0)
}

func TestPayloadMapsCodesToLabels(t *testing.T) {
	l := confirmLayout("Proceed", "Back")

	out, ok := l.payload(idOK)
	require.True(t, ok)
	assert.Equal(t, "Proceed", gjson.Get(out, "buttonPressed").String())
	assert.True(t, gjson.Get(out, "confirmed").Bool())

	out, ok = l.payload(idCancel)
	require.True(t, ok)
	assert.Equal(t, "Back", gjson.Get(out, "buttonPressed").String())
	assert.False(t, gjson.Get(out, "confirmed").Bool())
	assert.True(t, gjson.Get(out, "confirmed").Exists())

	_, ok = l.payload(7)
	assert.False(t, ok)
}

func TestBasicPayloadHasNoConfirmedField(t *testing.T) {
	out, ok := basicLayout("Got it").payload(idOK)
	require.True(t, ok)
	assert.JSONEq(t, `{"buttonPressed":"Got it"}`, out)

	_, ok = basicLayout("Got it").payload(idCancel)
	assert.False(t, ok)
}

func TestFailurePayload(t *testing.T) {
	out := failurePayload(errors.New(`access "denied"`))
	assert.JSONEq(t, `{"success":false,"error":"access \"denied\""}`, out)
}
