package auth

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// Capability is a permission required by a route.
type Capability int

const (
	// CapView covers read-only lookups of a single student.
	CapView Capability = iota
	// CapManage covers roster edits, marking and bulk reads.
	CapManage
)

func (c Capability) String() string {
	if c == CapManage {
		return "manage"
	}
	return "view"
}

// ModePassword enables the bcrypt check. Any other mode grants everything.
// With no hash configured, password mode denies every CapManage request.
const ModePassword = "password"

// Gate decides which capabilities a request holds.
type Gate struct {
	Mode   string
	Header string
	// Hash is the bcrypt hash of the faculty password.
	Hash string
}

// Allows reports whether r holds cap.
func (g Gate) Allows(r *http.Request, c Capability) bool {
	if c == CapView || g.Mode != ModePassword {
		return true
	}
	pw := r.Header.Get(g.Header)
	if pw == "" || g.Hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(g.Hash), []byte(pw)) == nil
}

// Require wraps next so that it only runs when the request holds cap.
func (g Gate) Require(c Capability, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.Allows(r, c) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
				"error": "faculty password required",
			})
			return
		}
		next(w, r)
	}
}

// HashPassword returns the bcrypt hash to put in the environment.
func HashPassword(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
