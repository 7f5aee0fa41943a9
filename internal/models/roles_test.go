package models

import "testing"

func TestRole_AtLeast(t *testing.T) {
	ordered := []Role{RoleViewer, RoleEditor, RoleAdmin, RoleOwner}

	// Each role passes a check against itself and everything below it,
	// and fails against everything above it.
	for i, have := range ordered {
		for j, required := range ordered {
			want := i >= j
			if got := have.AtLeast(required); got != want {
				t.Errorf("%s.AtLeast(%s) = %v, want %v", have, required, got, want)
			}
		}
	}
}

func TestRole_AtLeast_Unknown(t *testing.T) {
	if Role("").AtLeast(RoleViewer) {
		t.Error("empty role must not pass any check")
	}
	if Role("superuser").AtLeast(RoleViewer) {
		t.Error("unknown role must not pass any check")
	}
	if Role("").AtLeast(Role("")) {
		t.Error("empty role must not pass even against empty requirement")
	}
	if !RoleViewer.AtLeast(Role("")) {
		t.Error("known role passes against an unranked requirement")
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleViewer, RoleEditor, RoleAdmin, RoleOwner} {
		if !r.Valid() {
			t.Errorf("%s should be valid", r)
		}
	}
	if Role("manager").Valid() {
		t.Error("unknown role should be invalid")
	}
}

func TestElementType_Valid(t *testing.T) {
	known := []ElementType{
		ElementLine, ElementRectangle, ElementCircle, ElementText,
		ElementFreehand, ElementImage, ElementStickyNote, ElementDiamond,
		ElementHexagon, ElementStar, ElementTriangle, ElementArrow,
	}
	for _, et := range known {
		if !et.Valid() {
			t.Errorf("%s should be valid", et)
		}
	}
	for _, et := range []ElementType{"", "scribble", "LINE"} {
		if et.Valid() {
			t.Errorf("%q should be invalid", et)
		}
	}
}
