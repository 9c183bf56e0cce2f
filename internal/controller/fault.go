package controller

import (
	"time"

	"github.com/markusressel/therm2go/internal/configuration"
)

type FaultState int

const (
	// FaultOk means the temperature source is healthy
	FaultOk FaultState = iota
	// FaultGrace means the source is unavailable but still within the
	// grace period, the last known good output is held
	FaultGrace
	// FaultFaulted means the source outage exceeded the grace period
	// (or the policy is shutdown), the output is forced to zero
	FaultFaulted
)

func (s FaultState) String() string {
	switch s {
	case FaultOk:
		return "ok"
	case FaultGrace:
		return "grace"
	default:
		return "faulted"
	}
}

// FaultMonitor tracks the availability of a zone's temperature source
// over time and decides when the configured fault policy kicks in.
type FaultMonitor struct {
	policy string
	grace  time.Duration

	state FaultState
	since time.Time
}

func NewFaultMonitor(policy string, grace time.Duration) *FaultMonitor {
	return &FaultMonitor{
		policy: policy,
		grace:  grace,
	}
}

// Observe feeds one availability sample into the monitor and returns
// the resulting state. A healthy sample always resets the monitor,
// regardless of how long the source was gone.
func (m *FaultMonitor) Observe(available bool, now time.Time) FaultState {
	if available {
		m.state = FaultOk
		m.since = time.Time{}
		return m.state
	}

	switch m.state {
	case FaultOk:
		if m.policy == configuration.FaultPolicyHold && m.grace > 0 {
			m.state = FaultGrace
			m.since = now
		} else {
			m.state = FaultFaulted
		}
	case FaultGrace:
		if now.Sub(m.since) >= m.grace {
			m.state = FaultFaulted
		}
	}

	return m.state
}

// State returns the current fault state without advancing the monitor.
func (m *FaultMonitor) State() FaultState {
	return m.state
}
