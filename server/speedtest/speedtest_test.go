package speedtest

import (
	"testing"

	"github.com/showwin/speedtest-go/speedtest"
	"github.com/stretchr/testify/assert"
)

func TestMbps(t *testing.T) {
	assert.Equal(t, 100.0, mbps(speedtest.ByteRate(12_500_000)))
	assert.Equal(t, 1.23, mbps(speedtest.ByteRate(153_846)))
	assert.Equal(t, 0.0, mbps(0))
}
