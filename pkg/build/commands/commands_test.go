package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToStructuredFrom(t *testing.T) {
	structured := From{BaseImage: "python:3.8-slim"}.ToStructuredFrom()
	assert.Equal(t, "_", structured.Org())
	assert.Equal(t, "python", structured.Image())
	assert.Equal(t, "3.8-slim", structured.Version())

	structured = From{BaseImage: "gcr.io/distroless/static"}.ToStructuredFrom()
	assert.Equal(t, "gcr.io/distroless", structured.Org())
	assert.Equal(t, "static", structured.Image())
	assert.Equal(t, "latest", structured.Version())
}

func TestNewRawArg(t *testing.T) {
	arg, err := NewRawArg("MAKE_TARGET=build")
	assert.Nil(t, err)
	assert.Equal(t, "MAKE_TARGET", arg.Name)
	assert.Equal(t, "build", arg.Value)
	assert.True(t, arg.HasValue())

	arg, err = NewRawArg("GOOS")
	assert.Nil(t, err)
	assert.False(t, arg.HasValue())

	_, err = NewRawArg("")
	assert.NotNil(t, err)
}
