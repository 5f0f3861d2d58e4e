// Package proc supplies the process-level facilities the locking protocol
// leans on: a non-destructive PID liveness probe and deferred delivery of
// termination signals around the acquisition window.
//
// The probe (Alive, KillProber) uses kill(2) with signal 0, so it answers
// only "does a process with this PID exist right now". It cannot tell a
// surviving lock holder apart from an unrelated process that was assigned
// the same PID later; callers accept that ambiguity.
//
// SignalHold is the critical-section guard. Signals received while a hold
// is active are queued rather than acted on, which keeps the lock
// directory consistent: a process inside the acquisition window always
// reaches the step that removes its temporary marker file.
package proc
