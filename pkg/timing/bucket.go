/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: bucket.go
Description: Timing bucketizer for irprobe. Groups raw mark or space durations into a
small number of candidate values, each carrying the samples that fall within the
matching margin below it. Buckets are the raw material for every protocol constant.
*/

package timing

import (
	"sort"
)

// Bucket represents a cluster of observed durations treated as samples of one
// nominal protocol constant
type Bucket struct {
	Representative int   `json:"representative" yaml:"representative"` // Largest member, used as the nominal value
	Members        []int `json:"members" yaml:"members"`               // Samples in descending order
}

// Len returns the number of samples in the bucket
func (b Bucket) Len() int {
	return len(b.Members)
}

// Min returns the smallest sample in the bucket
func (b Bucket) Min() int {
	if len(b.Members) == 0 {
		return b.Representative
	}
	return b.Members[len(b.Members)-1]
}

// Average returns the integer mean of the bucket's samples
func (b Bucket) Average() int {
	if len(b.Members) == 0 {
		return b.Representative
	}
	sum := 0
	for _, m := range b.Members {
		sum += m
	}
	return sum / len(b.Members)
}

// Contains reports whether value could have been a member of the bucket, i.e.
// it lies no more than margin below the representative and not above it
func (b Bucket) Contains(value, margin int) bool {
	return value <= b.Representative && value >= b.Representative-margin
}

// Bucketize groups values into buckets that are at least margin apart.
// Values are sorted descending and a new bucket starts whenever the next value
// is more than margin below the active bucket's representative. Equal values
// always join the active bucket. A margin of zero gives one bucket per distinct
// value; a negative margin is treated as zero.
func Bucketize(values []int, margin int) []Bucket {
	if len(values) == 0 {
		return nil
	}
	if margin < 0 {
		margin = 0
	}

	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	buckets := make([]Bucket, 0, 4)
	current := -1
	for _, v := range sorted {
		if current < 0 || v < buckets[current].Representative-margin {
			buckets = append(buckets, Bucket{Representative: v})
			current++
		}
		buckets[current].Members = append(buckets[current].Members, v)
	}
	return buckets
}

// Representatives returns the representative value of each bucket, in bucket order
func Representatives(buckets []Bucket) []int {
	reps := make([]int, len(buckets))
	for i, b := range buckets {
		reps[i] = b.Representative
	}
	return reps
}

// Lookup returns the representative of the bucket that holds value, and false
// when no bucket matches
func Lookup(buckets []Bucket, value, margin int) (int, bool) {
	for _, b := range buckets {
		if b.Contains(value, margin) {
			return b.Representative, true
		}
	}
	return 0, false
}
