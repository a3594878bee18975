package pipeline

import (
	"fmt"
	"sync"
)

// Progress is the batch-level status report. It separates the soft outcomes
// (a run that proceeded without injected experience) from the terminal one
// (the whole pipeline aborted on leakage or a missing artifact), so reports
// never conflate a degraded run with a halted batch.
type Progress struct {
	mu          sync.Mutex
	mined       int
	skipped     int
	injected    int
	degraded    int
	failed      int
	abortReason string
}

// NewProgress creates an empty progress report.
func NewProgress() *Progress {
	return &Progress{}
}

func (p *Progress) noteMined() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mined++
}

func (p *Progress) noteSkipped() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skipped++
}

func (p *Progress) noteInjected() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.injected++
}

func (p *Progress) noteDegraded() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.degraded++
}

func (p *Progress) noteFailed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed++
}

func (p *Progress) abort(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.abortReason = reason
}

// Mined counts problems with a record appended to the store.
func (p *Progress) Mined() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mined
}

// Skipped counts problems whose extraction exhausted retries; the store holds
// no record for them and the batch continued.
func (p *Progress) Skipped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.skipped
}

// Injected counts runs that received an experience block.
func (p *Progress) Injected() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.injected
}

// Degraded counts runs that completed with zero injected experience.
func (p *Progress) Degraded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.degraded
}

// Failed counts runs whose node callback returned an error.
func (p *Progress) Failed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

// Aborted reports whether the pipeline halted before processing any run.
func (p *Progress) Aborted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.abortReason != ""
}

// AbortReason returns the halt reason, empty when the batch ran.
func (p *Progress) AbortReason() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.abortReason
}

// Summary renders the one-line report printed at the end of a phase.
func (p *Progress) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.abortReason != "" {
		return fmt.Sprintf("aborted: %s", p.abortReason)
	}
	return fmt.Sprintf("mined=%d skipped=%d injected=%d degraded=%d failed=%d",
		p.mined, p.skipped, p.injected, p.degraded, p.failed)
}
