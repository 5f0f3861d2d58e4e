// Package lock provides single-host mutual exclusion for the dotlock
// application.
//
// At most one process holding a given lock identity exists at a time.
// The default mechanism is dot-locking with hard links, a protocol that
// asks almost nothing of the filesystem and therefore works where flock
// and O_EXCL are unreliable, NFS mounts included.
//
// # The Link Protocol
//
// An acquisition attempt by process P for identity I runs three steps in
// the lock directory:
//
//  1. Write a Temporary Marker File named lock.pid<P>.<I>, unique to P,
//     containing P's owner record.
//  2. Hard-link the marker to the shared Lock File name lock.pid.<I>.
//     The result of the link call is deliberately ignored.
//  3. Stat the marker and read its link count. Exactly 2 means the link
//     in step 2 created the Lock File and P holds the lock. Anything
//     else means some other process does.
//
// The marker is removed in every outcome. Of any number of processes
// racing through step 2, the filesystem lets exactly one create the name,
// so exactly one observes a link count of 2.
//
// # Lock Files
//
// The Lock File's existence is the lock state. Its first line is the
// holder's PID; a hostname and acquisition time follow for whoever has to
// inspect a lock directory by hand. Lock Files are removed on release and
// by stale-lock recovery, never truncated or rewritten in place.
//
// # Stale Locks
//
// A holder killed without cleanup leaves its Lock File behind. The next
// claimant loses the link race, reads the recorded PID, and probes it.
// A dead PID makes the lock stale: the claimant deletes the Lock File and
// reports ErrStaleLock without taking the lock itself. Deletion and
// re-acquisition stay in separate invocations so that two processes
// discovering the same corpse cannot both "win" the cleanup.
//
// The probe is process existence only. A recycled PID reads as a live
// holder and keeps the lock busy until that process exits.
//
// # Backends
//
// The Store interface separates the claim mechanics from the busy/stale
// policy in Manager. Two stores exist: LinkStore, the default described
// above, and FlockStore, which takes a kernel advisory lock on the lock
// file and is the better choice on local filesystems where crashed
// holders should not require a second invocation to clear.
//
// # Usage
//
//	store := lock.NewLinkStore(dir)
//	mgr, err := lock.New(store, prober, "myjob")
//	if err != nil {
//	    // Handle error
//	}
//
//	if err := mgr.Acquire(); err != nil {
//	    // errors.Is(err, errors.ErrAlreadyRunning): a live holder exists
//	    // errors.Is(err, errors.ErrStaleLock): a dead holder was cleared
//	    // otherwise: the attempt itself failed
//	}
//	defer mgr.Release()
//
// # Thread Safety
//
// Manager and the stores serialize processes, not goroutines. A single
// instance should only be driven from one goroutine.
package lock
