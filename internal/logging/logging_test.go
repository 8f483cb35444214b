package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"DEBUG":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"bogus":   InfoLevel,
		"":        InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_WritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "debug", Output: &buf})

	l.Debug("mined blocks", "count", 101)
	out := buf.String()
	assert.Contains(t, out, "mined blocks")
	assert.Contains(t, out, "count=101")
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "warn", Output: &buf})

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestComponent_SharesOutputAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "debug", Output: &buf})

	c := l.Component("regtest")
	assert.Equal(t, DebugLevel, c.GetLevel())

	c.Debug("starting node")
	out := buf.String()
	assert.Contains(t, out, "regtest")
	assert.Contains(t, out, "starting node")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Output: &buf}).With("wallet", "mywallet")

	l.Info("loaded")
	assert.Contains(t, buf.String(), "wallet=mywallet")
}

func TestDefault(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	d := Discard()
	SetDefault(d)
	require.Same(t, d, Default())
}
