package xid

import "github.com/google/uuid"

// New returns a unique identifier such as "sale-6f1c0e2a-...".
func New(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
