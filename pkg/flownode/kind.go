// SPDX-License-Identifier: MPL-2.0

package flownode

import (
	"errors"
	"fmt"
)

const (
	// KindMember is a node owned by a tab or subflow through its z field.
	KindMember Kind = iota
	// KindPage is a flow tab.
	KindPage
	// KindTemplate is a subflow definition.
	KindTemplate
	// KindSharedConfig is a config node (any node without a z field).
	KindSharedConfig
)

// ErrInvalidKind is the sentinel error wrapped by InvalidKindError.
var ErrInvalidKind = errors.New("invalid node kind")

type (
	// Kind is the closed set of roles a node can play in a flow document.
	Kind int

	// InvalidKindError is returned when a Kind value is outside the known set.
	InvalidKindError struct {
		Value Kind
	}
)

// GroupKinds lists the kinds that own a group, in reassembly order.
func GroupKinds() []Kind {
	return []Kind{KindPage, KindTemplate, KindSharedConfig}
}

// Classify returns the kind of n. Tabs and subflows are recognised by type;
// any other node without a z field is a shared config, including nodes that
// lack a type altogether.
func Classify(n Node) Kind {
	switch n.Type() {
	case TypeTab:
		return KindPage
	case TypeSubflow:
		return KindTemplate
	}
	if _, ok := n.Z(); !ok {
		return KindSharedConfig
	}
	return KindMember
}

// String returns the human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindMember:
		return "member"
	case KindPage:
		return "page"
	case KindTemplate:
		return "template"
	case KindSharedConfig:
		return "shared-config"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsGroup reports whether nodes of this kind define a group.
func (k Kind) IsGroup() bool {
	return k == KindPage || k == KindTemplate || k == KindSharedConfig
}

// Validate returns an error if k is not one of the declared kinds.
func (k Kind) Validate() error {
	if k < KindMember || k > KindSharedConfig {
		return &InvalidKindError{Value: k}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid node kind %d", int(e.Value))
}

// Unwrap returns ErrInvalidKind so callers can use errors.Is for programmatic detection.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }
