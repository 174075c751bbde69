// Package annotations implements the canonical interval store for the active group.
//
// A [Store] keeps annotations sorted by start with dense ids 1..N. Structural changes
// (add, remove, clear, import) renumber; position updates from drags do not.
// Listeners registered with [Store.On] are invoked synchronously, in registration order,
// after the mutation that caused them has been applied.
//
// The store is not safe for concurrent use; it belongs to the interaction loop.
package annotations
