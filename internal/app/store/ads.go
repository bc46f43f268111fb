package store

import (
	"slices"
	"strings"

	"messenger/internal/app/model"
	"messenger/internal/pkg/errs"
	"messenger/internal/pkg/randx"
)

// Ads returns every ad in stored order.
func (s *Store) Ads() []model.Ad {
	return slices.Clone(s.ads)
}

// AddAd appends a promotional record.
func (s *Store) AddAd(name, text, posterURL, link string) (model.Ad, error) {
	if strings.TrimSpace(name) == "" {
		return model.Ad{}, errs.NewError(errs.ErrInvalidParams)
	}

	ad := model.Ad{
		ID:        randx.ID(randx.PrefixAd),
		Name:      strings.TrimSpace(name),
		Text:      text,
		PosterURL: posterURL,
		Link:      link,
	}
	s.ads = append(s.ads, ad)
	return ad, nil
}

// DeleteAd removes an ad by ID.
func (s *Store) DeleteAd(id string) error {
	idx := slices.IndexFunc(s.ads, func(a model.Ad) bool { return a.ID == id })
	if idx < 0 {
		return errs.NewError(errs.ErrAdNotFound)
	}
	s.ads = slices.Delete(s.ads, idx, idx+1)
	return nil
}
