package models

// Role is a board access level. Levels are strictly ordered; a check for a
// required role passes when the caller's level is at least as high.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

var roleRank = map[Role]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants everything required grants.
// Unknown roles rank below viewer and never pass.
func (r Role) AtLeast(required Role) bool {
	return roleRank[r] >= roleRank[required] && roleRank[r] > 0
}

// ElementType enumerates the drawable units a board accepts.
type ElementType string

const (
	ElementLine       ElementType = "line"
	ElementRectangle  ElementType = "rectangle"
	ElementCircle     ElementType = "circle"
	ElementText       ElementType = "text"
	ElementFreehand   ElementType = "freehand"
	ElementImage      ElementType = "image"
	ElementStickyNote ElementType = "sticky-note"
	ElementDiamond    ElementType = "diamond"
	ElementHexagon    ElementType = "hexagon"
	ElementStar       ElementType = "star"
	ElementTriangle   ElementType = "triangle"
	ElementArrow      ElementType = "arrow"
)

var elementTypes = map[ElementType]struct{}{
	ElementLine: {}, ElementRectangle: {}, ElementCircle: {}, ElementText: {},
	ElementFreehand: {}, ElementImage: {}, ElementStickyNote: {}, ElementDiamond: {},
	ElementHexagon: {}, ElementStar: {}, ElementTriangle: {}, ElementArrow: {},
}

// Valid reports whether t is a known element type.
func (t ElementType) Valid() bool {
	_, ok := elementTypes[t]
	return ok
}
