// Package agent provides the registry of decision backends and the shared
// prompt/plan plumbing the LLM-backed clients use. Concrete backends live in
// subpackages: anthropic (Claude), openai (OpenAI-compatible endpoints,
// including Grok via a custom base URL) and scripted (a deterministic
// offline backend for demos and tests). Backends implement core.AgentClient
// and are registered by id; the dispatch policy refers to them only by id.
package agent
