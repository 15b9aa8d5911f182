// Package drivers holds the per-radio configuration data: which fields a
// model's memory image contains, how large the image is, and which clone
// protocol moves it.
//
// A driver is data, not code. Each supported radio registers one immutable
// Config at init time; the registry maps a (vendor, model) identity to it:
//
//	cfg, err := drivers.Lookup("Baofeng", "BF-888")
//	eng, err := clone.New(port, cfg.Protocol)
//	mm, err := eng.Download(ctx)
//	tree := cfg.BuildTree(mm)
//
// Similar radio families differ in tables, offsets and timing, so they get
// separate Configs built from shared helpers rather than a type hierarchy.
package drivers
