package store

import (
	"regexp"
	"slices"
	"strings"

	"messenger/internal/app/model"
	"messenger/internal/pkg/errs"
)

var whitespace = regexp.MustCompile(`\s+`)

// RoleID derives a role ID from its display name.
func RoleID(name string) string {
	return whitespace.ReplaceAllString(strings.ToUpper(strings.TrimSpace(name)), "_")
}

func (s *Store) roleIndex(id string) int {
	return slices.IndexFunc(s.roles, func(r model.Role) bool { return r.ID == id })
}

// Roles returns every role in stored order.
func (s *Store) Roles() []model.Role {
	return slices.Clone(s.roles)
}

// Role looks a role up by ID.
func (s *Store) Role(id string) (model.Role, bool) {
	idx := s.roleIndex(id)
	if idx < 0 {
		return model.Role{}, false
	}
	return s.roles[idx], true
}

// AddRole creates a non-system role whose ID is derived from name.
func (s *Store) AddRole(name, description, color string) (model.Role, error) {
	id := RoleID(name)
	if id == "" {
		return model.Role{}, errs.NewError(errs.ErrInvalidParams)
	}
	if s.roleIndex(id) >= 0 {
		return model.Role{}, errs.NewError(errs.ErrRoleExists)
	}

	role := model.Role{
		ID:          id,
		Name:        strings.TrimSpace(name),
		Description: description,
		Color:       color,
	}
	s.roles = append(s.roles, role)
	return role, nil
}

// DeleteRole removes a non-system role and moves its holders to the default
// user role.
func (s *Store) DeleteRole(id string) error {
	idx := s.roleIndex(id)
	if idx < 0 {
		return errs.NewError(errs.ErrRoleNotFound)
	}
	if s.roles[idx].IsSystem {
		return errs.NewError(errs.ErrSystemRoleProtected)
	}

	reassigned := 0
	for _, u := range s.users {
		if u.Role == id {
			u.Role = model.RoleUser
			reassigned++
		}
	}
	s.roles = slices.Delete(s.roles, idx, idx+1)

	s.logger.Info().Str("role_id", id).Int("reassigned", reassigned).Msg("Role deleted.")
	return nil
}
