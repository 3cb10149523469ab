// Package rolemode implements the client-side role selection: the caller
// picks admin or vendor mode, and every protected view re-checks the backend
// before granting access. The mode is a navigation preference only; it never
// grants anything by itself.
package rolemode

import (
	"context"
	"fmt"
	"strings"

	"github.com/atinyakov/GophMarket/internal/models"
)

// Mode is the role the caller chose to act in.
type Mode string

const (
	None   Mode = ""
	Admin  Mode = "admin"
	Vendor Mode = "vendor"
)

// ParseMode parses "admin", "vendor" or "none".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "admin":
		return Admin, nil
	case "vendor":
		return Vendor, nil
	default:
		return None, fmt.Errorf("%w: unknown role mode %q", models.ErrInvalidInput, s)
	}
}

func (m Mode) String() string {
	if m == None {
		return "none"
	}
	return string(m)
}

// Access is the outcome of a guard check.
type Access int

const (
	// Unknown means the authorization state could not be resolved. Nothing is
	// granted and the mode is kept.
	Unknown Access = iota
	// SelectRole means no mode, or a different mode, is selected.
	SelectRole
	// Denied means the backend refused the caller. The mode has been cleared.
	Denied
	// Bootstrap means admin mode was chosen before any admin exists; only the
	// bootstrap claims are offered.
	Bootstrap
	// Granted means the backend confirmed the caller's role.
	Granted
)

func (a Access) String() string {
	switch a {
	case SelectRole:
		return "select-role"
	case Denied:
		return "denied"
	case Bootstrap:
		return "bootstrap"
	case Granted:
		return "granted"
	default:
		return "unknown"
	}
}

// Authorizer resolves the caller's identity and authorization against the
// backend. RevalidateAuthorization must bypass any cached answer.
type Authorizer interface {
	WhoAmI(ctx context.Context) (models.Principal, error)
	RevalidateAuthorization(ctx context.Context) (models.Authorization, error)
}

// Selector combines the persisted mode with live authorization checks.
type Selector struct {
	store *Store
	authz Authorizer
}

// NewSelector creates a Selector.
func NewSelector(store *Store, authz Authorizer) *Selector {
	return &Selector{store: store, authz: authz}
}

// Mode returns the selected mode.
func (s *Selector) Mode() (Mode, error) {
	return s.store.Load()
}

// Select records the caller's choice. It grants nothing: Guard decides access.
func (s *Selector) Select(m Mode) error {
	return s.store.Save(m)
}

// Clear resets the mode to None, as on logout.
func (s *Selector) Clear() error {
	return s.store.Clear()
}

// Guard decides whether the view for the required mode may be shown. Admin
// access is re-checked with the backend on every call. The returned error
// explains an Unknown outcome.
func (s *Selector) Guard(ctx context.Context, required Mode) (Access, error) {
	mode, err := s.store.Load()
	if err != nil {
		return Unknown, fmt.Errorf("load role mode: %w", err)
	}
	if mode == None || mode != required {
		return SelectRole, nil
	}

	switch mode {
	case Admin:
		a, err := s.authz.RevalidateAuthorization(ctx)
		if err != nil {
			return Unknown, err
		}
		if a.IsAuthorized() {
			return Granted, nil
		}
		if !a.HasAnyAdmin {
			return Bootstrap, nil
		}
		return s.deny()
	case Vendor:
		p, err := s.authz.WhoAmI(ctx)
		if err != nil {
			return Unknown, err
		}
		if p.IsAnonymous() {
			return s.deny()
		}
		return Granted, nil
	default:
		return SelectRole, nil
	}
}

func (s *Selector) deny() (Access, error) {
	if err := s.store.Clear(); err != nil {
		return Denied, fmt.Errorf("clear role mode: %w", err)
	}
	return Denied, nil
}
