package bloom_test

import (
	"fmt"
	"testing"

	"github.com/ohmanagement/sitebot/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(100, bloom.DefaultFalsePositiveRate)

	assert.False(t, f.Test("/angebot.html"))

	f.Add("/angebot.html")

	assert.True(t, f.Test("/angebot.html"))
	assert.False(t, f.Test("/kontakt.html"))
}

func TestFilter_TestAndAdd(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(100, bloom.DefaultFalsePositiveRate)

	assert.False(t, f.TestAndAdd("/"))
	assert.True(t, f.TestAndAdd("/"))
	assert.True(t, f.Test("/"))
}

func TestFilter_ZeroCapacity(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(0, bloom.DefaultFalsePositiveRate)

	f.Add("/")

	assert.True(t, f.Test("/"))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.Equal(t, uint(0), f.EstimatedCount())

	f.Add("/agb.html")
	f.Add("/impressum.html")
	f.Add("/datenschutz.html")

	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	const (
		numItems   = 10000
		fpRate     = 0.01
		testProbes = 10000
	)

	f := bloom.NewFilter(numItems, fpRate)

	for i := range numItems {
		f.Add(fmt.Sprintf("/added/%d.html", i))
	}

	falsePositives := 0
	for i := range testProbes {
		if f.Test(fmt.Sprintf("/notadded/%d.html", i)) {
			falsePositives++
		}
	}

	// Allow up to 2% to account for statistical variance.
	actualRate := float64(falsePositives) / float64(testProbes)
	assert.Less(t, actualRate, 0.02, "false positive rate %f exceeds 2%%", actualRate)
}
