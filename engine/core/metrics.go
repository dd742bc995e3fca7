package core

const AVG_COUNT uint8 = 30

// SolveMetrics tracks how long solver calls take during a session.
type SolveMetrics struct {
	avgCounter uint8
	msTimes    [AVG_COUNT]float64
	filled     uint8
	MSavg      float64
	Solves     int
	Failures   int
}

func NewSolveMetrics() *SolveMetrics {
	return &SolveMetrics{}
}

// Update records one solver call that took elapsed seconds.
func (m *SolveMetrics) Update(elapsed float64, failed bool) {
	m.msTimes[m.avgCounter] = elapsed * 1000.0
	m.avgCounter++
	m.avgCounter %= AVG_COUNT
	if m.filled < AVG_COUNT {
		m.filled++
	}

	sum := 0.0
	for i := uint8(0); i < m.filled; i++ {
		sum += m.msTimes[i]
	}
	m.MSavg = sum / float64(m.filled)

	m.Solves++
	if failed {
		m.Failures++
	}
}

func (m *SolveMetrics) Reset() {
	*m = SolveMetrics{}
}
