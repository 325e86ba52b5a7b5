package model

import "github.com/labkey/pushdist/pkg/domain/types"

// KeyPrefix is the object storage folder a customer's files are published to.
type KeyPrefix string

// NewKeyPrefix computes the storage prefix of a customer for an update type.
// Development channels live under d/, releases under r/<versionNum>. The
// monthly prefix keeps its historical trailing slash so existing object keys
// stay stable.
func NewKeyPrefix(customerKey string, updateType types.UpdateType, versionNum string) KeyPrefix {
	base := "downloads/" + customerKey
	switch updateType {
	case types.UpdateTypeMonthly:
		return KeyPrefix(base + "/d/monthly/")
	case types.UpdateTypeSnapshot:
		return KeyPrefix(base + "/d/snapshot")
	case types.UpdateTypeTrunk:
		return KeyPrefix(base + "/d/trunk")
	default:
		return KeyPrefix(base + "/r/" + versionNum)
	}
}

// Key returns the object key of fileName under the prefix.
func (x KeyPrefix) Key(fileName string) string {
	return string(x) + "/" + fileName
}

func (x KeyPrefix) String() string { return string(x) }
