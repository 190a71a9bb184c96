// Package lifecycle tracks the temporary files and directories a single
// transcription job creates and removes them when the job ends.
//
// A Scope belongs to exactly one job. Every path the job allocates or
// receives is registered on it, and the job defers ReleaseAll so removal
// happens on every exit path:
//
//	scope := lifecycle.NewScope(cfg.ScratchDir)
//	defer scope.ReleaseAll()
//
//	res, err := scope.NewPath("recording", ".webm")
//	...
//
// ReleaseAll is idempotent and best-effort. It attempts every path even when
// an earlier removal fails or panics, logs each failure, and returns the
// collected errors instead of propagating them.
package lifecycle
