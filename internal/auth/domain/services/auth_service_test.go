package services_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"authkeeper/internal/auth/domain/services"
)

func TestDeviceInfoBounded(t *testing.T) {
	t.Run("short values are kept", func(t *testing.T) {
		device := services.DeviceInfo{UserAgent: "curl/8.0", IPAddress: "127.0.0.1"}

		assert.Equal(t, device, device.Bounded())
	})

	t.Run("long values are cut to column width", func(t *testing.T) {
		device := services.DeviceInfo{
			UserAgent: strings.Repeat("x", 1024),
			IPAddress: strings.Repeat("9", 200),
		}

		bounded := device.Bounded()

		assert.Len(t, bounded.UserAgent, services.MaxUserAgentLength)
		assert.Len(t, bounded.IPAddress, services.MaxIPAddressLength)
	})

	t.Run("multibyte characters are counted as characters", func(t *testing.T) {
		device := services.DeviceInfo{UserAgent: strings.Repeat("ж", 600)}

		bounded := device.Bounded()

		assert.True(t, utf8.ValidString(bounded.UserAgent))
		assert.Equal(t, services.MaxUserAgentLength, utf8.RuneCountInString(bounded.UserAgent))
	})

	t.Run("invalid utf-8 is dropped", func(t *testing.T) {
		device := services.DeviceInfo{UserAgent: "agent\xff\xfe/1.0"}

		assert.Equal(t, "agent/1.0", device.Bounded().UserAgent)
	})
}
