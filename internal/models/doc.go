// Package models defines domain entities and persistence interfaces for the tslabel labeling tool.
//
// The package contains two categories of types:
//
// 1. Value types shared by every layer
//   - [Annotation] : An identified half-open interval over array indices
//   - [ExportedAnnotation] : Serializable annotation including its length
//   - [Stats] : Length statistics of an annotation set
//   - [Group] : Sibling files displayed together as synchronized views
//   - [MatchMode], [YMode], [SaveMode] : Validated string enums used by config and CLI
//
// 2. Persistent Entities
//   - [Snapshot] : The annotation set of one group, stored per workspace and group key
//   - [SaveRecord] : History entry for one write of labeled output
//
// Persistent entities implement the Model interface providing ID, timestamps, and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
