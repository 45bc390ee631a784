package utils

// RollingAverage is the mean of the last few samples of a float series. It is not safe for
// concurrent use.
type RollingAverage struct {
	data  []float64
	pos   int
	count int
}

// NewRollingAverage returns a rolling average over numSamples samples.
func NewRollingAverage(numSamples int) *RollingAverage {
	if numSamples < 1 {
		numSamples = 1
	}
	return &RollingAverage{data: make([]float64, numSamples)}
}

// NumSamples returns the window size.
func (ra *RollingAverage) NumSamples() int {
	return len(ra.data)
}

// Add records a sample, dropping the oldest once the window is full.
func (ra *RollingAverage) Add(x float64) {
	ra.data[ra.pos] = x
	ra.pos = (ra.pos + 1) % len(ra.data)
	if ra.count < len(ra.data) {
		ra.count++
	}
}

// Average returns the mean of the samples in the window, 0 before the first sample.
func (ra *RollingAverage) Average() float64 {
	if ra.count == 0 {
		return 0
	}
	sum := 0.
	for _, d := range ra.data[:ra.count] {
		sum += d
	}
	return sum / float64(ra.count)
}
