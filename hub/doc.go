// Package hub decouples the orchestrator's publishing calls from any
// subscriber's consumption rate. Every subscriber owns a bounded queue;
// publication never blocks. When a queue is full the oldest queued event is
// dropped so slow or disconnected observers can never stall the control
// loop. Commentary entries additionally flow through an append-only history
// with gapless, strictly increasing sequence numbers so late joiners can
// catch up in order.
package hub
