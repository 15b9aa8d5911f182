// Package settings exposes a radio memory image as a hierarchical tree of
// named, editable values.
//
// A driver builds the tree once per freshly populated memory map: groups
// nest other groups and settings, and each setting binds one bitfield.Field
// (plus an element index for repeated fields) to the shared memory map.
// External editors and import/export code address the tree by stable
// slash-separated paths:
//
//	tree.Get("channels/3/rxfreq")
//	tree.Set("settings/squelchlevel", 5)
//	tree.Children("channels")
//
// Set is encode-validate-then-commit: the new byte representation is
// validated before the memory map is touched, so a rejected value never
// corrupts bits sharing a byte with the field. A successful Set mutates the
// map immediately and is observable by any other setting bound to an
// overlapping byte range.
//
// The tree's structure is fixed at construction. Values change; nodes do
// not.
package settings
