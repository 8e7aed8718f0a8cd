// Package series holds the rolling-statistics primitives every indicator
// and statistical model in the engine is built on. All routines are pure,
// never panic on short input, and mark warmup entries with the Undefined
// sentinel rather than zero.
package series

import "math"

// Undefined returns the sentinel used for warmup entries in indicator
// arrays. It is NaN so that arithmetic on undefined entries stays undefined
// instead of silently producing zeros.
func Undefined() float64 {
	return math.NaN()
}

// IsDefined reports whether v carries a real value.
func IsDefined(v float64) bool {
	return !math.IsNaN(v)
}

// SMA computes the rolling-sum simple moving average. The output is aligned
// index-for-index with the input; entries before period-1 are undefined.
func SMA(values []float64, period int) []float64 {
	out := undefinedSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the exponential moving average seeded with the simple
// average of the first period values, then the standard recurrence
// v = price*k + prev*(1-k) with k = 2/(period+1).
func EMA(values []float64, period int) []float64 {
	out := undefinedSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)
	out[period-1] = ema

	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = values[i]*k + ema*(1-k)
		out[i] = ema
	}
	return out
}

// Mean returns the arithmetic mean, or the undefined sentinel for an empty
// input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return Undefined()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the sample variance (n-1 denominator); undefined for
// fewer than two values.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return Undefined()
	}
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values)-1)
}

// Std returns the sample standard deviation; undefined for fewer than two
// values.
func Std(values []float64) float64 {
	v := Variance(values)
	if !IsDefined(v) {
		return v
	}
	return math.Sqrt(v)
}

// Covariance returns the sample covariance of two equal-length sequences;
// undefined when the lengths differ or fewer than two pairs exist.
func Covariance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return Undefined()
	}
	ma := Mean(a)
	mb := Mean(b)
	var sum float64
	for i := range a {
		sum += (a[i] - ma) * (b[i] - mb)
	}
	return sum / float64(len(a)-1)
}

// Correlation returns the Pearson correlation of two sequences. Zero
// variance in either input is treated as "no signal" and yields 0 rather
// than a division by zero.
func Correlation(a, b []float64) float64 {
	cov := Covariance(a, b)
	if !IsDefined(cov) {
		return Undefined()
	}
	sa := Std(a)
	sb := Std(b)
	if sa == 0 || sb == 0 {
		return 0
	}
	return cov / (sa * sb)
}

// Autocorrelation returns the lag-k autocorrelation of the sequence.
// Undefined when the sequence is shorter than lag+2; zero variance yields 0.
func Autocorrelation(values []float64, lag int) float64 {
	if lag <= 0 || len(values) < lag+2 {
		return Undefined()
	}
	mean := Mean(values)
	var num, den float64
	for i := range values {
		d := values[i] - mean
		den += d * d
		if i >= lag {
			num += d * (values[i-lag] - mean)
		}
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// RollingStd computes the rolling sample standard deviation over the
// trailing period; warmup entries are undefined.
func RollingStd(values []float64, period int) []float64 {
	out := undefinedSlice(len(values))
	if period < 2 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		out[i] = Std(values[i-period+1 : i+1])
	}
	return out
}

// Slope fits a least-squares line to the sequence against its index and
// returns the slope. Undefined for fewer than two values; a degenerate
// (constant-index) denominator cannot occur.
func Slope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return Undefined()
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	fn := float64(n)
	den := fn*sumXX - sumX*sumX
	if den == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / den
}

// PercentileRank returns the percentage of values less than or equal to x,
// on a 0-100 scale. Undefined for empty input.
func PercentileRank(values []float64, x float64) float64 {
	if len(values) == 0 {
		return Undefined()
	}
	count := 0
	for _, v := range values {
		if v <= x {
			count++
		}
	}
	return float64(count) / float64(len(values)) * 100
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func undefinedSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
