package auditstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	obs "qualityaudit/internal/observability/types"
)

// ErrDuplicate marks a submission whose entity is already audited for the
// same associate.
var ErrDuplicate = errors.New("entity already audited for associate")

// DuplicateChecker decides whether a submission would repeat an existing
// audit. The same entity may be audited again for a different associate;
// only the pair counts as a repeat.
type DuplicateChecker struct {
	store  *RecordStore
	logger obs.Logger
}

// NewDuplicateChecker creates a checker over the given record store.
func NewDuplicateChecker(store *RecordStore, logger obs.Logger) *DuplicateChecker {
	return &DuplicateChecker{store: store, logger: logger}
}

// IsDuplicate reports whether a record with the same entity ID and
// associate email already exists. Matching is case-insensitive and ignores
// surrounding whitespace.
//
// When the store cannot be reached the error is returned; an unreachable
// store never reads as "not a duplicate".
func (c *DuplicateChecker) IsDuplicate(ctx context.Context, entityID, associateEmail string) (bool, error) {
	wantEntity := normalize(entityID)
	wantEmail := normalize(associateEmail)
	if wantEntity == "" {
		return false, nil
	}

	records, err := c.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}

	for _, r := range records {
		if normalize(r.EntityID) == wantEntity && normalize(r.AssociateEmail) == wantEmail {
			c.logger.Info(ctx, "duplicate submission detected", obs.Fields{
				"entity_id":       entityID,
				"associate_email": associateEmail,
				"existing_record": r.Name,
			})
			return true, nil
		}
	}
	return false, nil
}

// Check is IsDuplicate as an error: it returns ErrDuplicate for a repeat
// submission so callers can errors.Is against the taxonomy.
func (c *DuplicateChecker) Check(ctx context.Context, entityID, associateEmail string) error {
	dup, err := c.IsDuplicate(ctx, entityID, associateEmail)
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("%w: %s for %s", ErrDuplicate, entityID, associateEmail)
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
