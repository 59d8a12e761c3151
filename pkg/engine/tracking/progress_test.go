package tracking

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProgressBarHookRendersAcrossCalls(t *testing.T) {
	var buf bytes.Buffer
	hook := NewProgressBarHook(&buf)

	assert.NotPanics(t, func() {
		hook(0, 3, "rev-1")
		hook(1, 3, "rev-2")
		hook(2, 3, "rev-3")
	})
	assert.NotEmpty(t, buf.String())
}

func TestNewProgressBarHookLazilySizesOnFirstCall(t *testing.T) {
	var buf bytes.Buffer
	hook := NewProgressBarHook(&buf)

	assert.NotPanics(t, func() {
		hook(0, 1, "only-rev")
	})
}
