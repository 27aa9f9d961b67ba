package visibility

import (
	"fmt"
)

// The visibility package decides which galleries and pictures a requester may read. The
// same rule is exposed twice: as a pure Go decision (CanSee, Filter.Allows) used by the
// services, and as an SQL predicate (Filter.SQL) used by the store to scope its queries.
// Both forms must always agree.

// Requester identifies who is asking. The zero value is the anonymous requester, that is
// a request without any authenticated user bound to it.
type Requester struct {
	UserID int64
}

// Anonymous is the explicit no-user sentinel.
var Anonymous = Requester{}

// User returns the requester for the authenticated user with the given id.
func User(userID int64) Requester {
	return Requester{UserID: userID}
}

func (r Requester) IsAnonymous() bool {
	return r.UserID == 0
}

// CanSee is the central decision: a resource is visible if the requester owns it or
// if it is not private. The anonymous requester never owns anything.
func CanSee(r Requester, ownerID int64, private bool) bool {
	return (!r.IsAnonymous() && ownerID == r.UserID) || !private
}

// EffectivePrivate combines the private flags of a picture and of its gallery. A picture
// can never be more public than the gallery holding it.
func EffectivePrivate(picturePrivate, galleryPrivate bool) bool {
	return picturePrivate || galleryPrivate
}

type kind int

const (
	kindOwned kind = iota
	kindPublicExcluding
	kindPublicAll
	kindVisible
)

// Filter is a listing scope bound to a requester.
type Filter struct {
	kind      kind
	requester Requester
}

// Owned scopes a listing to the resources of the requester, regardless of the private flag.
func Owned(r Requester) Filter {
	return Filter{kind: kindOwned, requester: r}
}

// PublicExcluding scopes a listing to public resources not owned by the requester. For
// the anonymous requester there is nothing to exclude and the filter is PublicAll.
func PublicExcluding(r Requester) Filter {
	if r.IsAnonymous() {
		return PublicAll()
	}
	return Filter{kind: kindPublicExcluding, requester: r}
}

// PublicAll scopes a listing to every public resource.
func PublicAll() Filter {
	return Filter{kind: kindPublicAll}
}

// VisibleTo is the CanSee rule as a filter, used for direct lookups by id.
func VisibleTo(r Requester) Filter {
	return Filter{kind: kindVisible, requester: r}
}

// Allows reports whether a resource with the given owner and (effective) private flag
// passes the filter.
func (f Filter) Allows(ownerID int64, private bool) bool {
	switch f.kind {
	case kindOwned:
		return !f.requester.IsAnonymous() && ownerID == f.requester.UserID
	case kindPublicExcluding:
		return !private && ownerID != f.requester.UserID
	case kindPublicAll:
		return !private
	case kindVisible:
		return CanSee(f.requester, ownerID, private)
	default:
		return false
	}
}

// Columns names the SQL expressions holding the owner id and the private flag of the
// scoped resource. Private may be a compound expression, e.g. the effective privacy of
// a picture joined with its gallery.
type Columns struct {
	Owner   string
	Private string
}

// SQL renders the filter as a boolean SQL expression with '?' placeholders together with
// its arguments. Callers must rebind the placeholders for their driver.
func (f Filter) SQL(c Columns) (string, []interface{}) {
	switch f.kind {
	case kindOwned:
		return fmt.Sprintf("(%s = ?)", c.Owner), []interface{}{f.requester.UserID}
	case kindPublicExcluding:
		return fmt.Sprintf("(%s = ? AND %s <> ?)", c.Private, c.Owner), []interface{}{false, f.requester.UserID}
	case kindPublicAll:
		return fmt.Sprintf("(%s = ?)", c.Private), []interface{}{false}
	case kindVisible:
		if f.requester.IsAnonymous() {
			return fmt.Sprintf("(%s = ?)", c.Private), []interface{}{false}
		}
		return fmt.Sprintf("(%s = ? OR %s = ?)", c.Owner, c.Private), []interface{}{f.requester.UserID, false}
	default:
		return "(1 = 0)", nil
	}
}

func (f Filter) String() string {
	switch f.kind {
	case kindOwned:
		return fmt.Sprintf("owned(%d)", f.requester.UserID)
	case kindPublicExcluding:
		return fmt.Sprintf("public-excluding(%d)", f.requester.UserID)
	case kindPublicAll:
		return "public-all"
	case kindVisible:
		return fmt.Sprintf("visible-to(%d)", f.requester.UserID)
	default:
		return "none"
	}
}
