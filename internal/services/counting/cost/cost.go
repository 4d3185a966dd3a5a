// Package cost holds the pricing curves for rescuing a lost count.
package cost

import "math"

// Curve returns the price in credits of restoring a count lost at failedAt.
// A curve must never decrease as failedAt grows.
type Curve func(failedAt int64) int64

// Flat charges the same amount regardless of the lost count
func Flat(amount int64) Curve {
	return func(int64) int64 {
		return floor(amount)
	}
}

// Linear charges base plus perCount credits for every number lost. Prices
// that would overflow saturate at math.MaxInt64.
func Linear(base, perCount int64) Curve {
	if perCount < 0 {
		perCount = 0
	}

	headroom := int64(math.MaxInt64)
	if base > 0 {
		headroom -= base
	}

	return func(failedAt int64) int64 {
		if failedAt < 0 {
			failedAt = 0
		}
		if perCount > 0 && failedAt > headroom/perCount {
			return math.MaxInt64
		}
		return floor(base + perCount*failedAt)
	}
}

// Capped limits a curve to limit credits. A limit of zero or less leaves the
// curve unbounded.
func Capped(curve Curve, limit int64) Curve {
	if limit <= 0 {
		return curve
	}
	return func(failedAt int64) int64 {
		price := curve(failedAt)
		if price > limit {
			return limit
		}
		return price
	}
}

func floor(price int64) int64 {
	if price < 0 {
		return 0
	}
	return price
}
