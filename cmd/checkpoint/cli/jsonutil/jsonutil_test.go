package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalIndentWithNewline(t *testing.T) {
	data, err := MarshalIndentWithNewline(map[string]int{"a": 1}, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}\n", string(data))
}

func TestMarshalIndentWithNewline_Unsupported(t *testing.T) {
	_, err := MarshalIndentWithNewline(make(chan int), "", "  ")
	assert.Error(t, err)
}
