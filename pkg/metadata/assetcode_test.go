package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAssetCode(t *testing.T) {
	tests := []struct {
		name     string
		sequence int
		expected string
	}{
		{
			name:     "Basic Case",
			sequence: 42,
			expected: "AST-00042",
		},
		{
			name:     "Large Sequence",
			sequence: 123456,
			expected: "AST-123456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := NewAssetCode(tt.sequence)
			assert.Equal(t, tt.expected, code.GenerateCode())
			assert.Equal(t, tt.expected, code.Barcode())
		})
	}
}

func TestQRImagePath(t *testing.T) {
	code := NewAssetCode(7)
	assert.Equal(t, "qrcodes/AST-00007.png", code.QRImagePath())
}
