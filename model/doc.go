// Package model abstracts the external natural-language reasoning capability
// that the supervisor and specialists depend on. It defines:
//
//   - The Model interface (channel-based streaming generation)
//   - Normalized Request / Response structures with role-based Content
//   - Tool definitions and tool call / result wire types
//   - GenerateText, a blocking helper that drains a generation stream
//   - MockModel, a deterministic in-memory implementation for tests
//
// The routing core never inspects a provider's internals; everything passes
// through these normalized types. Concrete providers live in the openai and
// anthropic subpackages.
package model
