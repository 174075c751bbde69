// Package workspace wires the labeling components into one interactive session.
//
// A [Session] owns the groups of a workspace, the views of the displayed group, the annotation
// store, the cross-view mapping and the selection machine. It exposes the operations a front end
// issues (draw, confirm, click, hover, drag, delete, locate, switch group, save) and keeps the
// components consistent while doing so:
//
//   - confirming an interval adds it to the store, broadcasts one mask per view and binds the new
//     global id to the annotation id
//   - deleting, clearing, importing and switching groups all disarm the selection
//   - switching groups stashes the outgoing annotation set (in memory and, when configured, in
//     the snapshot store) before the incoming files are loaded
//
// Loading is asynchronous. [Session.BeginSwitch] returns a [LoadRequest] that can run on any
// goroutine; its [LoadResult] must be handed back to [Session.ApplyLoad] on the interaction loop.
// Results of superseded switches are rejected with [shared.ErrStaleLoad].
//
// A Session is not safe for concurrent use.
package workspace
