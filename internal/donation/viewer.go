package donation

import (
	"strconv"
	"strings"

	"github.com/foodshare/foodshare/internal/models"
)

// Viewer is the caller identity passed explicitly into each operation
type Viewer struct {
	ID   int64
	Role models.Role
}

// Anonymous reports whether no signed-in user is attached
func (v Viewer) Anonymous() bool {
	return v.ID <= 0
}

// ParseID converts a caller-supplied identifier. Only positive decimal
// integers are valid.
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
