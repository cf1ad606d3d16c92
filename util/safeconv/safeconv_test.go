package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToUint32(t *testing.T) {
	assert.Equal(t, uint32(0), IntToUint32(-1))
	assert.Equal(t, uint32(60000), IntToUint32(60000))
}

func TestUint32ToInt(t *testing.T) {
	assert.Equal(t, 2051, Uint32ToInt(2051))
	assert.Equal(t, 0, Uint32ToInt(0))
}

func TestUnitToByte(t *testing.T) {
	assert.Equal(t, byte(0), UnitToByte(-0.5))
	assert.Equal(t, byte(0), UnitToByte(float32(math.NaN())))
	assert.Equal(t, byte(255), UnitToByte(1.5))
	for p := 0; p < 256; p++ {
		assert.Equal(t, byte(p), UnitToByte(float32(p)/255))
	}
}
