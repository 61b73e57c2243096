// Package lifecycle distinguishes "process terminated" from "process
// restarted in place" using only boundary signals from the host runtime.
//
// The host gives no guarantee that work runs during an actual termination,
// so nothing irreversible happens at unload time. Instead an "about to
// terminate" signal persists a flag in the volatile tier; an in-place
// restart clears it, and a cold start that still observes the flag treats
// it as proof of a genuine termination and runs cleanup before restore.
// The transition logic is a pure three-state machine (Step); the Monitor
// applies its effects.
package lifecycle
