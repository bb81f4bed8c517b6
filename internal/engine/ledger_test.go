package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedger_MarkAndContains(t *testing.T) {
	l := NewLedger()

	assert.False(t, l.Contains("2025-05-12", "123"))

	l.Mark("2025-05-12", "123")
	assert.True(t, l.Contains("2025-05-12", "123"))

	// Same id on another date is a distinct key.
	assert.False(t, l.Contains("2025-05-13", "123"))
	assert.False(t, l.Contains("2025-05-12", "124"))
}

func TestLedger_MarkIsIdempotent(t *testing.T) {
	l := NewLedger()

	l.Mark("2025-05-12", "123")
	l.Mark("2025-05-12", "123")

	assert.Equal(t, 1, l.Len())
}

func TestLedger_Clear(t *testing.T) {
	l := NewLedger()
	l.Mark("2025-05-12", "123")
	l.Mark("2025-05-12", "124")

	l.Clear()

	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Contains("2025-05-12", "123"))
}
