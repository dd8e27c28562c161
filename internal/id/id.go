package id

import (
	"fmt"
	mathrand "math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/cleared-dev/equity/internal/model"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// retryNamespace scopes batch ids derived from caller retry keys.
var retryNamespace = uuid.MustParse("7d0c3a52-1c44-4a53-9b61-3f0e8f5f2b10")

// New returns a lexicographically sortable identifier.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewBatchID returns a fresh batch id. With a non-empty retry key the id is
// derived from the key, so retrying the same commit targets the same batch.
func NewBatchID(retryKey string) string {
	if retryKey == "" {
		return New()
	}
	return uuid.NewSHA1(retryNamespace, []byte(retryKey)).String()
}

// NewAccountID returns an id for a system-created account.
func NewAccountID() string {
	return uuid.NewString()
}

// FormatLegID returns a leg id like "<batch>-03-divest". Legs of the same
// economic pair share the "<batch>-03" group.
func FormatLegID(batchID string, group int, role model.LegRole) string {
	return fmt.Sprintf("%s-%02d-%s", batchID, group, role)
}

// ParseLegID splits "<batch>-03-divest" into its batch id, group number and role.
func ParseLegID(legID string) (batchID string, group int, role model.LegRole, err error) {
	roleAt := strings.LastIndex(legID, "-")
	if roleAt <= 0 || roleAt == len(legID)-1 {
		return "", 0, "", fmt.Errorf("invalid leg ID format: %q", legID)
	}
	groupAt := strings.LastIndex(legID[:roleAt], "-")
	if groupAt <= 0 {
		return "", 0, "", fmt.Errorf("invalid leg ID format: %q", legID)
	}

	group, err = strconv.Atoi(legID[groupAt+1 : roleAt])
	if err != nil {
		return "", 0, "", fmt.Errorf("invalid group in leg ID %q: %w", legID, err)
	}
	return legID[:groupAt], group, model.LegRole(legID[roleAt+1:]), nil
}

// LegGroup strips the role suffix from a leg id.
// "<batch>-03-divest" -> "<batch>-03". Ids that do not follow the leg
// convention return "".
func LegGroup(legID string) string {
	batchID, group, _, err := ParseLegID(legID)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s-%02d", batchID, group)
}
