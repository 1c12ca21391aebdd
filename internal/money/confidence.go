package money

// ConfidenceBucket is a coarse grouping of classification confidence.
type ConfidenceBucket string

const (
	BucketHigh   ConfidenceBucket = "high"
	BucketMedium ConfidenceBucket = "medium"
	BucketLow    ConfidenceBucket = "low"
)

// ConfidenceScore is a classification confidence in [0, 1].
type ConfidenceScore struct {
	value float64
}

// NewConfidenceScore validates that v is within [0, 1].
func NewConfidenceScore(v float64) (ConfidenceScore, error) {
	if v < 0 || v > 1 {
		return ConfidenceScore{}, validationErrorf("confidence %v outside [0, 1]", v)
	}

	return ConfidenceScore{value: v}, nil
}

func (c ConfidenceScore) Value() float64 { return c.value }

// Bucket maps the score onto high (>=0.8), medium (>=0.5) or low.
func (c ConfidenceScore) Bucket() ConfidenceBucket {
	switch {
	case c.value >= 0.8:
		return BucketHigh
	case c.value >= 0.5:
		return BucketMedium
	default:
		return BucketLow
	}
}
