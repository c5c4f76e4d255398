package numbering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "TK-2026-00001", Format("TK", 2026, 1))
	assert.Equal(t, "QJ-2026-00042", Format("QJ", 2026, 42))
	assert.Equal(t, "SC-2027-12345", Format("SC", 2027, 12345))
	// Sequences past five digits widen instead of wrapping.
	assert.Equal(t, "TK-2026-123456", Format("TK", 2026, 123456))
}
