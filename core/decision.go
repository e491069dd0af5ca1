package core

// TargetNone is the RoutingDecision target used when no registered specialist
// qualifies for a query and the supervisor must answer directly.
const TargetNone = ""

// RoutingDecision is the supervisor's dispatch verdict for a single user
// turn. Exactly one decision is produced per submitted turn; it is never
// persisted.
type RoutingDecision struct {
	// Target is the ID of the chosen specialist, or TargetNone.
	Target string `json:"target"`
	// Rationale optionally explains the classification. Informational only.
	Rationale string `json:"rationale,omitempty"`
}

// Routed reports whether the decision names a specialist.
func (d RoutingDecision) Routed() bool { return d.Target != TargetNone }

// Response is the outcome of handling a query, produced by a specialist or by
// the supervisor's fallback path.
type Response struct {
	// Text is the natural-language answer.
	Text string `json:"text"`
	// Handled reports whether the responder actually satisfied the request.
	// A specialist sets it to false instead of returning a degraded answer so
	// the supervisor can recover via its fallback reply.
	Handled bool `json:"handled"`
}
