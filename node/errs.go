package node

import "errors"

var (
	// ErrDeadNode is wrapped by operations attempted after a node died.
	ErrDeadNode = errors.New("dead node")

	// ErrProtected is wrapped by mutations attempted outside an
	// action scope while the tree root has protection enabled.
	ErrProtected = errors.New("protected tree")

	// ErrResolution is wrapped by strict path or identifier lookups
	// that cannot be satisfied.
	ErrResolution = errors.New("resolution error")

	// ErrInvalidArgument is wrapped by calls with arguments outside
	// their contract, such as a zero parent depth or protect on a
	// non-root.
	ErrInvalidArgument = errors.New("invalid argument")
)
