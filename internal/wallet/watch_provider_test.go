package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchProviderConnects(t *testing.T) {
	p, err := NewWatchProvider(" 0x7466CFC967C4FFF0907ED5BEE8DB067459AD25FC ", 1315)
	require.NoError(t, err)

	c := NewConnector(p, DefaultChain())
	var seen []string
	c.Subscribe(func(addr string) { seen = append(seen, addr) })

	addr, err := c.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x7466cfc967c4fff0907ed5bee8db067459ad25fc", addr)
	assert.Equal(t, []string{addr}, seen)

	_, err = p.Request(context.Background(), "eth_sendTransaction")
	assert.Error(t, err)
}

func TestWatchProviderRejectsBadAddress(t *testing.T) {
	_, err := NewWatchProvider("0xnothex", 1315)
	assert.Error(t, err)
}
