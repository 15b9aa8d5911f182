package settings

import "fmt"

// PathError indicates a path that does not resolve to the expected kind of
// node: a missing name, a group used as a setting, or the reverse.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("settings: %s: %s", e.Path, e.Reason)
}
