package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// UpdateType is the release channel a build is published on.
type UpdateType string

const (
	UpdateTypeMonthly  UpdateType = "monthly"
	UpdateTypeSnapshot UpdateType = "snapshot"
	UpdateTypeRelease  UpdateType = "release"
	UpdateTypeTrunk    UpdateType = "trunk"
)

// UpdateTypes lists every supported update type in display order.
var UpdateTypes = []UpdateType{
	UpdateTypeTrunk,
	UpdateTypeMonthly,
	UpdateTypeSnapshot,
	UpdateTypeRelease,
}

// ParseUpdateType lower-cases s and validates it against the supported types.
func ParseUpdateType(s string) (UpdateType, error) {
	t := UpdateType(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range UpdateTypes {
		if t == v {
			return t, nil
		}
	}
	return "", goerr.Wrap(ErrInvalidUpdateType, "the supported options are trunk, monthly, snapshot, or release",
		goerr.V("update_type", s))
}

func (t UpdateType) String() string { return string(t) }

// IsRelease reports whether t publishes to the release (rather than development) path.
func (t UpdateType) IsRelease() bool { return t == UpdateTypeRelease }

// WikiName returns the name of the customer wiki page updated for t.
func (t UpdateType) WikiName() string {
	if t.IsRelease() {
		return "release"
	}
	return "development"
}
