// Package ownership decides locally whether the current identity may change
// an entity. The answer is advisory: the backend re-checks every mutation.
package ownership

import (
	"github.com/dmitrijs2005/pinboard/internal/client/models"
	"github.com/dmitrijs2005/pinboard/internal/common"
)

// Owned is implemented by entities that belong to exactly one identity.
type Owned interface {
	OwnerID() int64
}

var (
	_ Owned = models.Pin{}
	_ Owned = models.Comment{}
)

func owns(identity *models.Identity, entity Owned) bool {
	return identity != nil && entity != nil && identity.ID == entity.OwnerID()
}

// CanEdit reports whether identity owns entity. A nil identity owns nothing.
func CanEdit(identity *models.Identity, entity Owned) bool {
	return owns(identity, entity)
}

// CanDelete follows the same rule as CanEdit.
func CanDelete(identity *models.Identity, entity Owned) bool {
	return owns(identity, entity)
}

// Check is CanEdit with a reason: common.ErrNotAuthenticated without an
// identity, common.ErrForbidden when someone else owns entity.
func Check(identity *models.Identity, entity Owned) error {
	if identity == nil {
		return common.ErrNotAuthenticated
	}
	if !owns(identity, entity) {
		return common.ErrForbidden
	}
	return nil
}
