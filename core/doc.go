// Package core defines the shared data model and contracts of the autoplay
// framework: game state snapshots, the action vocabulary, agent assignment
// configuration, session lifecycle states, the AgentClient interface and the
// error taxonomy. Every other package depends on core; core depends on
// nothing but the standard library and uuid.
package core
