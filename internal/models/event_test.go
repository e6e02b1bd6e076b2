package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_Valid(t *testing.T) {
	tests := []struct {
		kind  Kind
		valid bool
	}{
		{KindSuccess, true},
		{KindFailure, true},
		{KindRetry, true},
		{KindTimeout, true},
		{Kind("unknown"), false},
		{Kind(""), false},
		{Kind("SUCCESS"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.kind.Valid())
		})
	}
}

func TestKinds_CoversAllRecognizedValues(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 4)
	for _, k := range kinds {
		assert.True(t, k.Valid())
	}
}
