// Package permissions holds the capability vocabulary of the admin console
// and the rules that derive effective grants from a permission set.
package permissions

// Capability names as issued by the remote API.
const (
	Admin          = "admin"
	SuperAdmin     = "super_admin"
	Create         = "create"
	Read           = "read"
	Update         = "update"
	Delete         = "delete"
	ManageUsers    = "manage_users"
	ManageSettings = "manage_settings"
)

// Role labels shown in the session info view.
const (
	RoleLabelSuperAdmin    = "Super Admin"
	RoleLabelAdministrator = "Administrator"
)

// Basic returns the CRUD capabilities implied for every admin.
func Basic() []string {
	return []string{Create, Read, Update, Delete}
}

// IsBasic reports whether capability is one of the CRUD capabilities.
func IsBasic(capability string) bool {
	switch capability {
	case Create, Read, Update, Delete:
		return true
	}
	return false
}

// Set is an ordered, duplicate-free list of capabilities. The zero value is empty.
type Set struct {
	items []string
	index map[string]struct{}
}

// NewSet builds a Set from caps, dropping empty strings and duplicates.
func NewSet(caps ...string) Set {
	var s Set
	for _, c := range caps {
		s = s.With(c)
	}
	return s
}

// With returns a copy of s that contains capability.
func (s Set) With(capability string) Set {
	if capability == "" || s.Has(capability) {
		return s
	}
	out := Set{
		items: make([]string, 0, len(s.items)+1),
		index: make(map[string]struct{}, len(s.items)+1),
	}
	for _, c := range s.items {
		out.items = append(out.items, c)
		out.index[c] = struct{}{}
	}
	out.items = append(out.items, capability)
	out.index[capability] = struct{}{}
	return out
}

func (s Set) Has(capability string) bool {
	_, ok := s.index[capability]
	return ok
}

func (s Set) Len() int {
	return len(s.items)
}

// Slice returns the capabilities in insertion order.
func (s Set) Slice() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// IsAdmin reports whether the set holds admin or super_admin.
func (s Set) IsAdmin() bool {
	return s.Has(Admin) || s.Has(SuperAdmin)
}

// Grants reports whether the set confers capability. Admins hold the basic
// capabilities implicitly and super_admin holds everything.
func (s Set) Grants(capability string) bool {
	if s.IsAdmin() && IsBasic(capability) {
		return true
	}
	return s.Has(capability) || s.Has(SuperAdmin)
}

// RoleLabel returns the display label for the highest role in the set.
func (s Set) RoleLabel() string {
	if s.Has(SuperAdmin) {
		return RoleLabelSuperAdmin
	}
	return RoleLabelAdministrator
}

// ForAdminSession completes raw into the set an admin session must carry:
// admin is added when missing, followed by any missing basic capability.
// A nil or empty raw list defaults to admin only.
func ForAdminSession(raw []string) Set {
	s := NewSet(raw...)
	s = s.With(Admin)
	for _, c := range Basic() {
		s = s.With(c)
	}
	return s
}
