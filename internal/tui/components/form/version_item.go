package form

import "github.com/colonyops/vbisect/internal/core/version"

// versionItem is the list item used by VersionSelectField.
type versionItem struct {
	v     version.Version
	index int
}

func (i versionItem) FilterValue() string { return i.v.Version }
