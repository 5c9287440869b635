// Package stores holds one action processor per domain.
//
// A store registers its action type with a dispatch.Dispatcher. Each
// action is validated, sent to the store's remote collaborator and, on
// success, merged into the shared writer context through the upsert
// engine before the action's completion is called with a typed result.
//
// Lifecycle of one action:
//
//	Idle -> Requesting -> ReconcilingSuccess -> Completed
//	                   \-> Failed ----------/
//
// Actions with the same operation and scope run one at a time; an action
// arriving while another is in flight waits for it to complete. After
// Close, results are dropped instead of delivered.
package stores
