// Package harness runs scripted scenarios against the stores.
//
// A scenario seeds a fake remote, then runs steps. Each step may change
// the remote truth, inject a failure into the next call of one remote
// operation, and dispatch one action, waiting for its completion. After the
// last step the committed cache is checked by assertions and can be
// compared with a golden dump.
//
// # Scenario Format
//
//	name: order_status_revert
//	description: "A failed status update restores the cached status"
//	site: 1
//	remote:
//	  orders:
//	    - {site_id: 1, order_id: 963, status: processing}
//	steps:
//	  - action: retrieve_order
//	    args: {order_id: 963}
//	  - action: update_order_status
//	    args: {order_id: 963, status: completed}
//	    fail: {op: UpdateOrderStatus, kind: transport}
//	    expect: {outcome: transport}
//	assertions:
//	  - type: present
//	    kind: order
//	    key: "963"
//	    expect: {status: processing}
//
// Action names are the snake_case forms listed by ActionNames. Arguments
// are snake_case too; the scenario site is filled in when omitted.
//
// # Outcomes
//
// Each completion is classified as ok, validation, not_found, no_route,
// invalid_parameter, transport or error. A step without an expect clause
// must complete ok.
//
// # Determinism
//
// Every run uses sequential object IDs and a stepping clock, and by default
// a fresh in-memory database, so identical scenarios commit identical
// graphs.
package harness
