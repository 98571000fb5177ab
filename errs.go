package mst

import (
	"github.com/faassen/mobx-state-tree/node"
	"github.com/faassen/mobx-state-tree/patch"
)

// The error kinds surfaced by this package, re-exported from the
// packages that produce them. Match with errors.Is.
var (
	ErrDeadNode        = node.ErrDeadNode
	ErrProtected       = node.ErrProtected
	ErrResolution      = node.ErrResolution
	ErrInvalidArgument = node.ErrInvalidArgument
	ErrPatchApply      = patch.ErrApply
)
