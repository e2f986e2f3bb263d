package watch

import (
	"fmt"
	"sync"

	"github.com/sgaunet/bullets"

	"github.com/mergegate/mergegate/pkg/platform"
)

// violationTracker tracks rule violations and their display handles with
// thread-safe access. Violations are keyed by their stable code.
type violationTracker struct {
	mu         sync.RWMutex
	violations map[string]platform.RuleViolation
	handles    map[string]*bullets.BulletHandle
}

// newViolationTracker creates a new violation tracker with initialized maps.
func newViolationTracker() *violationTracker {
	return &violationTracker{
		violations: make(map[string]platform.RuleViolation),
		handles:    make(map[string]*bullets.BulletHandle),
	}
}

// getViolation retrieves a violation by code with read lock.
func (vt *violationTracker) getViolation(code string) (platform.RuleViolation, bool) {
	vt.mu.RLock()
	defer vt.mu.RUnlock()
	violation, exists := vt.violations[code]
	return violation, exists
}

// setViolation stores a violation by code with write lock.
func (vt *violationTracker) setViolation(code string, violation platform.RuleViolation) {
	vt.mu.Lock()
	defer vt.mu.Unlock()
	vt.violations[code] = violation
}

// deleteViolation removes a violation by code with write lock.
func (vt *violationTracker) deleteViolation(code string) {
	vt.mu.Lock()
	defer vt.mu.Unlock()
	delete(vt.violations, code)
}

// getHandle retrieves a bullet handle by violation code with read lock.
func (vt *violationTracker) getHandle(code string) (*bullets.BulletHandle, bool) {
	vt.mu.RLock()
	defer vt.mu.RUnlock()
	handle, exists := vt.handles[code]
	return handle, exists
}

// setHandle stores a bullet handle for a violation code with write lock.
func (vt *violationTracker) setHandle(code string, handle *bullets.BulletHandle) {
	vt.mu.Lock()
	defer vt.mu.Unlock()
	vt.handles[code] = handle
}

// deleteHandle removes a bullet handle by violation code with write lock.
func (vt *violationTracker) deleteHandle(code string) {
	vt.mu.Lock()
	defer vt.mu.Unlock()
	delete(vt.handles, code)
}

// codes returns the tracked violation codes with read lock.
func (vt *violationTracker) codes() []string {
	vt.mu.RLock()
	defer vt.mu.RUnlock()
	out := make([]string, 0, len(vt.violations))
	for code := range vt.violations {
		out = append(out, code)
	}
	return out
}

// update processes the violations of an evaluation, detects changes, and
// updates handles. Returns a list of transition descriptions.
func (vt *violationTracker) update(violations []platform.RuleViolation, logger *bullets.UpdatableLogger) []string {
	var transitions []string
	reported := make(map[string]bool)

	for _, violation := range violations {
		if violation.Code == "" || reported[violation.Code] {
			continue
		}

		reported[violation.Code] = true
		transition := vt.processViolation(violation, logger)
		if transition != "" {
			transitions = append(transitions, transition)
		}
	}

	// Violations missing from the latest evaluation are resolved.
	transitions = append(transitions, vt.resolveCleared(reported)...)

	return transitions
}

// processViolation handles the update logic for a single violation.
func (vt *violationTracker) processViolation(violation platform.RuleViolation, logger *bullets.UpdatableLogger) string {
	old, exists := vt.getViolation(violation.Code)

	switch {
	case !exists:
		return vt.handleNewViolation(violation, logger)
	case old.Message != violation.Message || old.Bypassable != violation.Bypassable:
		return vt.handleChangedViolation(violation)
	default:
		return ""
	}
}

// handleNewViolation displays a newly reported violation.
func (vt *violationTracker) handleNewViolation(violation platform.RuleViolation, logger *bullets.UpdatableLogger) string {
	vt.setViolation(violation.Code, violation)

	text := formatViolation(violation)
	handle := logger.InfoHandle(text)
	if violation.Bypassable {
		handle.Warning(text)
	} else {
		handle.Error(text)
	}
	vt.setHandle(violation.Code, handle)

	return fmt.Sprintf("Violation %s reported: %s", violation.Code, violation.Message)
}

// handleChangedViolation rewrites the display when the message or the
// bypassability of a known violation changed.
func (vt *violationTracker) handleChangedViolation(violation platform.RuleViolation) string {
	vt.setViolation(violation.Code, violation)

	if handle, exists := vt.getHandle(violation.Code); exists {
		text := formatViolation(violation)
		if violation.Bypassable {
			handle.Warning(text)
		} else {
			handle.Error(text)
		}
	}

	return fmt.Sprintf("Violation %s updated: %s", violation.Code, violation.Message)
}

// resolveCleared finalizes the violations no longer reported and stops
// tracking them.
func (vt *violationTracker) resolveCleared(reported map[string]bool) []string {
	var transitions []string

	for _, code := range vt.codes() {
		if reported[code] {
			continue
		}

		violation, _ := vt.getViolation(code)
		if handle, exists := vt.getHandle(code); exists {
			handle.Success(formatViolation(violation) + " - resolved")
		}
		vt.deleteViolation(code)
		vt.deleteHandle(code)
		transitions = append(transitions, fmt.Sprintf("Violation %s resolved", code))
	}

	return transitions
}

// formatViolation renders one violation line. Icons are added by the bullets
// library methods, not by this function.
func formatViolation(violation platform.RuleViolation) string {
	if violation.Bypassable {
		return violation.Message + " (bypassable)"
	}
	return violation.Message
}
