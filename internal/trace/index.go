package trace

import "sort"

// Locate returns the smallest index i such that series[i] >= ts, or
// len(series) when every sample precedes ts.
//
// The reference semantics are a forward scan from index 0 while
// series[i] < ts. On a non-decreasing series a binary search yields the
// same index, which is what this uses.
func Locate(ts float64, series []float64) int {
	return sort.Search(len(series), func(i int) bool {
		return series[i] >= ts
	})
}

// Interval resolves both ends of [startTs, endTs] and returns a half-open
// index range (Locate(startTs), Locate(endTs)+1) sized for slicing. When
// the resolved end precedes the resolved start it returns (-1, -1).
//
// The end of the range may exceed len(series) by one when endTs lies past
// the last sample; callers clamp before slicing.
func Interval(startTs, endTs float64, series []float64) (int, int) {
	start := Locate(startTs, series)
	end := Locate(endTs, series)
	if end < start {
		return -1, -1
	}
	return start, end + 1
}

// Unresolved reports whether an index range is the (-1, -1) sentinel.
func Unresolved(start, end int) bool {
	return start == -1 && end == -1
}
