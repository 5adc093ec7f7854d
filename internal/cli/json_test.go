package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightJSON(t *testing.T) {
	prev := disableColor
	t.Cleanup(func() { disableColor = prev })

	disableColor = true
	assert.Equal(t, `{"a":1}`, HighlightJSON(`{"a":1}`))

	disableColor = false
	out := HighlightJSON(`{"a":true}`)
	assert.Contains(t, out, Blue+`"a"`+ResetCode+":")
	assert.Contains(t, out, Yellow+"true"+ResetCode)
}

func TestGradient_NoColor(t *testing.T) {
	prev := disableColor
	t.Cleanup(func() { disableColor = prev })
	disableColor = true

	assert.Equal(t, "a\nb", Gradient("a\nb", BrandBlue, BrandPurple))
	assert.Equal(t, "✔", CheckMark())
}
