// Package crossview keeps the masks of every displayed view in step with the annotation store.
//
// A [Mapping] mints a global mask id for each logical interval and records, per view,
// which local mask renders it. The global id joins three things:
//
//   - G: global id -> (view id -> local mask id)
//   - the reverse index (view id, local mask id) -> global id, used on every drag event
//   - A: global id -> annotation id, used to write drags back to the store
//
// Structural store changes rebuild everything through [Mapping.ResyncAll], which mints
// fresh global ids. Position-only changes travel through [Mapping.OnDrag].
package crossview
