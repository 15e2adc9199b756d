package domain

// Principal is an authenticated identity as seen by the rest of the
// system. It never carries the password hash.
type Principal struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Username    string `json:"username"`
	Role        Role   `json:"role"`
}

// NormalizedRole is the coarse classification used for top-level
// dashboard routing.
func (p Principal) NormalizedRole() Role {
	return p.Role.Normalized()
}

// NormalizeID derives the stable record id for a username. Every byte
// outside [a-zA-Z0-9] is replaced with an underscore, so two usernames
// can collapse to the same id. Existing credential records were keyed
// this way, so the mapping cannot change.
func NormalizeID(username string) string {
	id := make([]byte, len(username))
	for i := 0; i < len(username); i++ {
		c := username[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			id[i] = c
		default:
			id[i] = '_'
		}
	}
	return string(id)
}
