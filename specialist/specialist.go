// Package specialist defines the domain responders the supervisor routes to.
// Each specialist owns a narrow slice of the problem space (billing,
// technical support, product questions) and answers queries within it,
// optionally calling tools. A specialist may also decline a query it was
// routed by mistake, handing control back to the fallback path.
package specialist

import (
	"context"

	"github.com/deskmesh/deskmesh/core"
)

// Specialist handles queries within a bounded domain of expertise.
//
// Implementations should be safe for concurrent use. Handle receives the
// current user query plus the shared conversation so the specialist can
// ground its answer in prior turns; it must not mutate the conversation.
type Specialist interface {
	// ID returns the stable identifier the supervisor routes by.
	ID() string

	// Description returns a short capability summary. The supervisor embeds
	// these descriptions in its routing prompt, so they should state what the
	// specialist can and cannot answer.
	Description() string

	// Handle answers the query. A response with Handled set to false means
	// the specialist declined; its text must then be discarded by the caller.
	Handle(ctx context.Context, query string, conv *core.Conversation) (core.Response, error)
}
