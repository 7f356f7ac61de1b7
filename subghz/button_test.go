package subghz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestButtonNameVW(t *testing.T) {
	assert.Equal(t, "UNLOCK", ButtonName("VW", 1))
	assert.Equal(t, "PANIC", ButtonName("VW", 8))
	assert.Equal(t, "BTN:9", ButtonName("VW", 9))
}

func TestButtonNameSuzuki(t *testing.T) {
	assert.Equal(t, "PANIC", ButtonName("Suzuki", 1))
	assert.Equal(t, "UNLOCK", ButtonName("Suzuki", 4))
	assert.Equal(t, "BTN:0", ButtonName("Suzuki", 0))
}

func TestButtonNameGenericFallback(t *testing.T) {
	assert.Equal(t, "BTN:A", ButtonName("Ford-V0", 0xA))
	assert.Equal(t, "BTN:F", ButtonName("UnknownProtocol", 0xF))
}
