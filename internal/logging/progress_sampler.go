package logging

// unknownLengthStep is how many bytes must accumulate between samples when
// the provider did not report a content length.
const unknownLengthStep = 4 << 20

// ProgressSampler suppresses repetitive transfer progress logs while keeping
// one line per percentage bucket. A sampler tracks a single transfer and is
// not safe for concurrent use.
type ProgressSampler struct {
	bucketSize  float64
	lastBucket  int
	lastUnknown int64
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 5%).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1, lastUnknown: -1}
}

// ShouldLog reports whether a progress event at percent should be logged.
// Negative percent means unknown and never emits.
func (s *ProgressSampler) ShouldLog(percent float64) bool {
	if s == nil {
		return true
	}
	if percent < 0 {
		return false
	}
	bucket := int(percent / s.bucketSize)
	if percent >= 100 {
		bucket = int(100 / s.bucketSize)
	}
	if bucket <= s.lastBucket {
		return false
	}
	s.lastBucket = bucket
	return true
}

// ShouldLogBytes samples by byte count. With a known total it delegates to
// percentage buckets; otherwise it emits every unknownLengthStep bytes.
// The returned percent is negative when total is unknown.
func (s *ProgressSampler) ShouldLogBytes(written, total int64) (float64, bool) {
	if total > 0 {
		percent := float64(written) / float64(total) * 100
		return percent, s.ShouldLog(percent)
	}
	if s == nil {
		return -1, true
	}
	step := written / unknownLengthStep
	if step <= s.lastUnknown {
		return -1, false
	}
	s.lastUnknown = step
	return -1, true
}

// Reset clears the sampler state so it can track a new transfer.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastBucket = -1
	s.lastUnknown = -1
}
