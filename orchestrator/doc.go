// Package orchestrator ties the driver, extractor, dispatch policy, agent
// registry and event hub together into one control loop. The loop goroutine
// is the sole writer to the emulation: it advances frames, periodically
// extracts and publishes state, schedules agent decisions on a worker with a
// bounded deadline, and serializes every plan (agent-originated or manual)
// through the same execution path. Agent failures and timeouts surface as
// diagnostic commentary and never kill the session.
package orchestrator
