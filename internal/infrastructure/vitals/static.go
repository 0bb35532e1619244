package vitals

import (
	"context"
	"sync"

	"FlowAdvisor/internal/ports"
)

// StaticProvider serves readings configured up front or pushed later.
type StaticProvider struct {
	mu  sync.RWMutex
	hr  *float64
	hrv *float64
}

var _ ports.VitalsProvider = (*StaticProvider)(nil)

// NewStaticProvider copies the optional readings.
func NewStaticProvider(heartRateBPM, hrvSDNNms *float64) *StaticProvider {
	p := &StaticProvider{}
	p.Update(heartRateBPM, hrvSDNNms)
	return p
}

// Update replaces both readings; nil clears one.
func (p *StaticProvider) Update(heartRateBPM, hrvSDNNms *float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hr = copyReading(heartRateBPM)
	p.hrv = copyReading(hrvSDNNms)
}

func (p *StaticProvider) LatestHeartRate(context.Context) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.hr == nil {
		return 0, false
	}
	return *p.hr, true
}

func (p *StaticProvider) LatestHRV(context.Context) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.hrv == nil {
		return 0, false
	}
	return *p.hrv, true
}

func copyReading(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
