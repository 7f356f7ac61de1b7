package subghz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestReverse8Involution(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var b = byte(rapid.IntRange(0, 255).Draw(t, "b"))
		assert.Equal(t, b, reverse8(reverse8(b)))
	})
}

func TestReverse8KnownValues(t *testing.T) {
	assert.Equal(t, byte(0x00), reverse8(0x00))
	assert.Equal(t, byte(0xFF), reverse8(0xFF))
	assert.Equal(t, byte(0x01), reverse8(0x80))
	assert.Equal(t, byte(0x0F), reverse8(0xF0))
}

func TestKeeloqRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var data = uint32(rapid.Uint32().Draw(t, "data"))
		var key = uint64(rapid.Uint64().Draw(t, "key"))

		var encrypted = KeeloqEncrypt(data, key)
		var decrypted = KeeloqDecrypt(encrypted, key)
		assert.Equal(t, data, decrypted, "KeeloqDecrypt(KeeloqEncrypt(x,k),k) should equal x")
	})
}

func TestKeeloqDifferentKeysDiverge(t *testing.T) {
	var data = uint32(0x12345678)
	var a = KeeloqEncrypt(data, 0x0102030405060708)
	var b = KeeloqEncrypt(data, 0x1102030405060708)
	assert.NotEqual(t, a, b, "encrypting under different keys should not collide for this input")
}
