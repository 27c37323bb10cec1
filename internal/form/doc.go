// Package form binds the batch registration form to its option catalogs.
//
// A form session owns three explicitly passed stores:
//
//   - [OptionStore] loads every option category with one bundled fetch and
//     reports a shared pending/ready/failed status. A reload never leaves a
//     mix of old and new categories behind.
//   - [State] holds field values and per-field error flags. [State.ApplyChange]
//     is the only way a value changes; input events of every kind are first
//     normalized by an [Adapter].
//   - [CreateFlow] runs the creatable-option sub-flow: a typed label is
//     applied optimistically, created through a [Creator], appended to the
//     catalog and then selected by id. At most one creation per category is
//     in flight.
//
// [Session] wires the three together for one open form and exposes the
// per-field [FieldConfig] a renderer needs. [Registry] keeps sessions by id
// and expires idle ones.
//
// After [Session.Close], completions of in-flight fetches and creations are
// discarded: they return [ErrClosed] and leave the stores untouched.
package form
