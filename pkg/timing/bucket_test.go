/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: bucket_test.go
Description: Tests for the timing bucketizer. Covers ordering, membership, tie-breaks,
degenerate margins and re-bucketing stability.
*/

package timing_test

import (
	"testing"

	"github.com/kleascm/irprobe/pkg/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBucketizeEmpty tests that empty input yields no buckets
func TestBucketizeEmpty(t *testing.T) {
	assert.Empty(t, timing.Bucketize(nil, 200))
	assert.Empty(t, timing.Bucketize([]int{}, 200))
}

// TestBucketizeSampleSpaces tests bucketing of the reference capture's spaces
func TestBucketizeSampleSpaces(t *testing.T) {
	spaces := []int{3952, 1482, 1482, 1508, 520, 1482, 520, 1482, 1482, 3978, 520, 520, 520, 520, 520, 520, 520, 520}

	buckets := timing.Bucketize(spaces, 200)
	require.Len(t, buckets, 3)

	assert.Equal(t, []int{3978, 1508, 520}, timing.Representatives(buckets))
	assert.Equal(t, []int{3978, 3952}, buckets[0].Members)
	assert.Equal(t, 6, buckets[1].Len())
	assert.Equal(t, 1482, buckets[1].Min())
	assert.Equal(t, 1486, buckets[1].Average())
	assert.Equal(t, 10, buckets[2].Len())
}

// TestBucketizeOrderingAndMembership tests that representatives are strictly
// descending and that every sample sits within margin below its own bucket only
func TestBucketizeOrderingAndMembership(t *testing.T) {
	inputs := [][]int{
		{9000, 4500, 560, 1690, 560, 560, 560, 1690, 39000, 9000, 2250, 560},
		{100, 300, 500, 700, 900, 1100},
		{5, 5, 5, 5},
		{1, 2000, 3, 4000, 5, 6000, 7, 8000},
	}
	margins := []int{1, 50, 200, 1000}

	for _, values := range inputs {
		for _, margin := range margins {
			buckets := timing.Bucketize(values, margin)

			total := 0
			for i, b := range buckets {
				total += b.Len()
				if i > 0 {
					assert.Less(t, b.Representative, buckets[i-1].Representative)
				}
				assert.Equal(t, b.Representative, b.Members[0])
			}
			assert.Equal(t, len(values), total, "every sample belongs to a bucket")

			for _, v := range values {
				owners := 0
				for _, b := range buckets {
					if b.Contains(v, margin) {
						owners++
					}
				}
				assert.Equal(t, 1, owners, "value %d margin %d", v, margin)
			}
		}
	}
}

// TestBucketizeTieBreak tests that equal values join the active bucket
func TestBucketizeTieBreak(t *testing.T) {
	buckets := timing.Bucketize([]int{500, 500, 500}, 0)
	require.Len(t, buckets, 1)
	assert.Equal(t, []int{500, 500, 500}, buckets[0].Members)
}

// TestBucketizeBoundary tests that a value exactly margin below joins the bucket
func TestBucketizeBoundary(t *testing.T) {
	buckets := timing.Bucketize([]int{1000, 800, 799}, 200)
	require.Len(t, buckets, 2)
	assert.Equal(t, []int{1000, 800}, buckets[0].Members)
	assert.Equal(t, []int{799}, buckets[1].Members)
}

// TestBucketizeZeroMargin tests exact-value bucketing
func TestBucketizeZeroMargin(t *testing.T) {
	buckets := timing.Bucketize([]int{3, 1, 2, 3, 1}, 0)
	assert.Equal(t, []int{3, 2, 1}, timing.Representatives(buckets))

	negative := timing.Bucketize([]int{3, 1, 2, 3, 1}, -10)
	assert.Equal(t, timing.Representatives(buckets), timing.Representatives(negative))
}

// TestBucketizeDoesNotMutateInput tests that the caller's slice keeps its order
func TestBucketizeDoesNotMutateInput(t *testing.T) {
	values := []int{1, 3, 2}
	timing.Bucketize(values, 0)
	assert.Equal(t, []int{1, 3, 2}, values)
}

// TestBucketizeIdempotence tests that re-bucketing the representatives as
// singletons yields the same number of buckets
func TestBucketizeIdempotence(t *testing.T) {
	values := []int{7930, 3952, 494, 1482, 520, 1482, 494, 1508, 494, 520, 3978, 20000, 19850, 100}
	for _, margin := range []int{0, 10, 200, 500} {
		first := timing.Bucketize(values, margin)
		second := timing.Bucketize(timing.Representatives(first), margin)
		assert.Len(t, second, len(first), "margin %d", margin)
	}
}

// TestLookup tests resolving a sample to its bucket representative
func TestLookup(t *testing.T) {
	buckets := timing.Bucketize([]int{1508, 1482, 520, 494}, 200)

	rep, ok := timing.Lookup(buckets, 1482, 200)
	assert.True(t, ok)
	assert.Equal(t, 1508, rep)

	_, ok = timing.Lookup(buckets, 5000, 200)
	assert.False(t, ok)
}
