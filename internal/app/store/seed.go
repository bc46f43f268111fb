package store

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"messenger/internal/app/model"
)

//go:embed seed.yaml
var seedYAML []byte

type seedAdmin struct {
	Username    string `yaml:"username"`
	DisplayName string `yaml:"displayName"`
	Country     string `yaml:"country"`
}

// seedData is the default content of a fresh document.
type seedData struct {
	Roles []model.Role `yaml:"roles"`
	Ads   []model.Ad   `yaml:"ads"`
	Admin seedAdmin    `yaml:"admin"`
}

func loadSeed() (seedData, error) {
	var sd seedData
	if err := yaml.Unmarshal(seedYAML, &sd); err != nil {
		return seedData{}, fmt.Errorf("failed to parse embedded seed data: %w", err)
	}
	return sd, nil
}

// SystemRoles returns the roles every document must contain.
func SystemRoles() []model.Role {
	sd, err := loadSeed()
	if err != nil {
		panic(err)
	}
	out := []model.Role{}
	for _, r := range sd.Roles {
		if r.IsSystem {
			out = append(out, r)
		}
	}
	return out
}

// Seed resets the store to the default document: default roles and ads, no
// bans, no conversations and a single admin account protected by
// adminPassword.
func (s *Store) Seed(adminPassword string) error {
	sd, err := loadSeed()
	if err != nil {
		return err
	}

	s.users = nil
	s.conversations = nil
	s.bans = nil
	s.roles = append([]model.Role(nil), sd.Roles...)
	s.ads = append([]model.Ad(nil), sd.Ads...)

	if err := s.insertAdmin(sd.Admin, adminPassword); err != nil {
		return err
	}

	s.logger.Info().Int("roles", len(s.roles)).Int("ads", len(s.ads)).Msg("Store seeded with default data.")
	return nil
}

// EnsureSystem restores the pieces of the document the application cannot
// run without: the system roles and the admin account. It reports whether
// anything was added.
func (s *Store) EnsureSystem(adminPassword string) (bool, error) {
	sd, err := loadSeed()
	if err != nil {
		return false, err
	}

	changed := false
	for _, r := range sd.Roles {
		if r.IsSystem && s.roleIndex(r.ID) < 0 {
			s.roles = append(s.roles, r)
			changed = true
		}
	}

	if s.userByUsernameRef(sd.Admin.Username) == nil {
		if err := s.insertAdmin(sd.Admin, adminPassword); err != nil {
			return changed, err
		}
		changed = true
	}

	if changed {
		s.logger.Warn().Msg("Document was missing system records; restored.")
	}
	return changed, nil
}

func (s *Store) insertAdmin(admin seedAdmin, adminPassword string) error {
	u, err := s.insertUser(NewUser{
		Username:    admin.Username,
		DisplayName: admin.DisplayName,
		Password:    adminPassword,
		Role:        model.RoleAdmin,
		Country:     admin.Country,
	}, model.StatusOffline)
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	ref := s.userRef(u.ID)
	ref.IsVerified = true
	return nil
}
