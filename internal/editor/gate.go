package editor

// Principal is what a gate can see of the current browser session.
type Principal interface {
	HasToken() bool
	IsAdmin() bool
}

// Gate decides whether mutation controls are shown and mutations accepted.
type Gate func(Principal) bool

var (
	// AnyToken passes for any logged-in browser, whatever its role.
	AnyToken Gate = func(p Principal) bool { return p != nil && p.HasToken() }
	// AdminRole passes only when the token carries the Admin role claim.
	AdminRole Gate = func(p Principal) bool { return p != nil && p.IsAdmin() }
)

// Guest is the principal of a request without a session.
type Guest struct{}

func (Guest) HasToken() bool { return false }
func (Guest) IsAdmin() bool  { return false }
