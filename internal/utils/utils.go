package utils

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NewReference returns an opaque external reference such as "wd_3f9c..." used
// for withdrawals and gateway receipts.
func NewReference(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + id[:20]
}

// ParseID parses a positive numeric path parameter.
func ParseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
