// Package model provides the read-only remote record types exchanged with
// the remote service and handed back to callers in completions.
//
// Records are plain values: stores never hold on to them after the upsert
// engine has copied their content into local entities. All JSON tags use
// snake_case. Money is decimal.Decimal, which encodes as a string, so no
// record carries a float.
package model
