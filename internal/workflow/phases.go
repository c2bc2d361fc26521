package workflow

import (
	"fmt"
	"strings"

	"stagehand/internal/events"
)

// Phase names a step of a pass.
type Phase string

const (
	PhaseNormalize Phase = events.PhaseNormalize
	PhaseReconcile Phase = events.PhaseReconcile
	PhaseGC        Phase = events.PhaseGC
)

// AllPhases lists every phase in execution order.
var AllPhases = []Phase{PhaseNormalize, PhaseReconcile, PhaseGC}

// ParsePhases resolves phase names, accepting comma-separated lists. The
// result is deduplicated and in execution order; no names selects every phase.
func ParsePhases(names []string) ([]Phase, error) {
	wanted := make(map[Phase]bool)
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			phase := Phase(part)
			if !phase.valid() {
				return nil, fmt.Errorf("unknown phase %q (want normalize, reconcile or gc)", part)
			}
			wanted[phase] = true
		}
	}
	if len(wanted) == 0 {
		return append([]Phase(nil), AllPhases...), nil
	}
	phases := make([]Phase, 0, len(wanted))
	for _, phase := range AllPhases {
		if wanted[phase] {
			phases = append(phases, phase)
		}
	}
	return phases, nil
}

func (p Phase) valid() bool {
	for _, known := range AllPhases {
		if p == known {
			return true
		}
	}
	return false
}

func phaseNames(phases []Phase) []string {
	names := make([]string, len(phases))
	for i, p := range phases {
		names[i] = string(p)
	}
	return names
}
