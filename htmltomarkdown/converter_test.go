package htmltomarkdown_test

import (
	"testing"

	"github.com/clinscrape/clinscrape"
	"github.com/clinscrape/clinscrape/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts headings and lists", func(t *testing.T) {
		t.Parallel()

		c := htmltomarkdown.NewConverter()
		md, err := c.Convert(`<h2>Lifting</h2><ul><li>Shrink 300 shots: 99,000</li></ul>`)

		require.NoError(t, err)
		assert.Contains(t, md, "## Lifting")
		assert.Contains(t, md, "Shrink 300 shots")
	})

	t.Run("converts price tables", func(t *testing.T) {
		t.Parallel()

		c := htmltomarkdown.NewConverter()
		md, err := c.Convert(`<table><tr><th>Option</th><th>Price</th></tr><tr><td>300 shots</td><td>99,000</td></tr></table>`)

		require.NoError(t, err)
		assert.Contains(t, md, "300 shots")
		assert.Contains(t, md, "|")
	})

	t.Run("empty input is invalid", func(t *testing.T) {
		t.Parallel()

		c := htmltomarkdown.NewConverter()
		_, err := c.Convert("   ")
		assert.Equal(t, clinscrape.EINVALID, clinscrape.ErrorCode(err))
	})
}
