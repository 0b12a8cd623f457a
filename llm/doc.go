// Package llm defines the inference-backend contract consumed by the swarm
// engine, plus the provider plumbing around it: primary→fallback failover,
// request rate limiting, and retry with exponential backoff.
//
// A backend is anything speaking a chat-completion style contract. Concrete
// HTTP implementations live in subpackages (see llm/openaicompat).
package llm
