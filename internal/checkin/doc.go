// Package checkin implements the admin QR check-in/check-out console.
//
// A Console owns one camera stream and runs a single scan loop over it:
//
//	Camera → scan loop → Decoder → Resolver → Console state → Confirm → Mutator
//
// The console state machine is
//
//	Idle → Resolving → Resolved → Mutating → Idle
//	Resolving → Idle (unknown code or lookup failure, after a recovery delay)
//	Mutating → Resolved (store failure; the attendee is held for a retry)
//
// The scan loop resolves synchronously and only pulls frames while the
// console is Idle, so at most one resolve is ever in flight per console.
// Reset, SwitchMode and Close bump a cycle counter; a resolve that completes
// for an older cycle is discarded.
package checkin
