package vdom

// longestIncreasingSubsequence returns the indices of one longest strictly
// increasing subsequence of seq, in ascending order.  The scratch arrays
// (predecessor links and subsequence tails) are pre-sized to twice the
// sequence length in a single allocation, keeping the overhead beyond the
// O(n log n) search linear.
func longestIncreasingSubsequence(seq []int) []int {
	n := len(seq)
	if n == 0 {
		return nil
	}
	scratch := make([]int, 2*n)
	pred := scratch[:n]
	tails := scratch[n:]
	length := 0
	for i, v := range seq {
		// first tail whose value is >= v
		lo, hi := 0, length
		for lo < hi {
			mid := (lo + hi) / 2
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			pred[i] = tails[lo-1]
		} else {
			pred[i] = -1
		}
		tails[lo] = i
		if lo == length {
			length++
		}
	}
	out := make([]int, length)
	at := tails[length-1]
	for j := length - 1; j >= 0; j-- {
		out[j] = at
		at = pred[at]
	}
	return out
}
