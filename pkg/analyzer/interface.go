package analyzer

// Detector checks one compliance rule against a single shift of a timeline.
// Detectors hold no state between calls, so one instance can serve several
// timelines concurrently.
type Detector interface {
	// Name returns the rule name for reporting.
	Name() string

	// Kind returns the kind of finding the detector emits.
	Kind() Kind

	// Check evaluates the shift at index i of tl and returns a finding when
	// the rule is violated.
	Check(tl *Timeline, i int) (Finding, bool)
}
