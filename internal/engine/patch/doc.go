// Package patch records text edits as hunks mapping an old coordinate
// space to a new one, and composes chains of such patches.
//
// A patch is the primitive behind change tracking: the buffer splices
// every edit into the patch of changes since its base text, and callers
// build undo or synchronization on top of Compose and Invert.
//
//	p := patch.New()
//	_ = p.Splice(point.New(0, 2), point.New(0, 3), point.New(0, 1), ptr("cde"), ptr("X"))
//	out, _ := p.Apply("abcdefgh") // "abXfgh"
//
// Mutations are all-or-nothing: when a splice or composition fails with
// ErrPatchInapplicable, no state has changed.
package patch
