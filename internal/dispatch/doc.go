// Package dispatch delivers typed actions to the one processor registered
// for their action type.
//
// A Dispatcher is constructed explicitly and passed to the stores that
// register with it. Dispatch is synchronous: it calls the processor's
// OnAction on the caller's goroutine. Processors complete long-running
// work later through the completion carried by the action.
package dispatch
