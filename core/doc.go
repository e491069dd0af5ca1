// Package core provides the foundational domain types shared by the deskmesh
// packages. It defines:
//
//   - Turns and Conversations (ordered, append-only session history)
//   - RoutingDecisions (the supervisor's per-turn dispatch verdict)
//   - Responses (a specialist's answer plus its handled signal)
//   - The error taxonomy for failures that escape the routing cycle
//
// The package intentionally keeps implementation concerns (model providers,
// dispatch strategies, persistence) out of scope so that every other package
// can depend on it without cycles.
package core
