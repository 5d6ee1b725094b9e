// Package emulator owns the emulation instance behind a single-writer
// Driver: it loads the ROM, advances frames, maps the action vocabulary onto
// button press/release timing and captures screenshots. The Driver performs
// no internal locking; it assumes one logical caller (the orchestrator's
// loop) and leaves concurrency safety to it. The underlying CPU/memory core
// is abstracted behind the Machine interface and supplied by a factory so
// the framework stays independent of any particular emulation backend.
package emulator
