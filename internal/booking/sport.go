package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/sport-facility-reservation/internal/model"
)

// SportInput carries the admin-supplied fields for creating or
// updating a sport.
type SportInput struct {
	Name        string
	Description string
	PlayerCount *int
}

// CreateSport registers a new bookable sport. Admin only; names must
// be unique.
func (s *Service) CreateSport(ctx context.Context, caller Caller, in SportInput) (model.Sport, error) {
	if !caller.IsAdmin() {
		return model.Sport{}, newError(KindForbidden, "only an administrator can create a sport")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Sport{}, newError(KindValidation, "sport name is required")
	}
	exists, err := s.sports.ExistsByName(ctx, name)
	if err != nil {
		return model.Sport{}, fmt.Errorf("check sport name: %w", err)
	}
	if exists {
		return model.Sport{}, newError(KindAlreadyExists, "a sport with the name '%s' already exists", name)
	}
	sport := model.Sport{Name: name, Description: in.Description, PlayerCount: in.PlayerCount}
	if err := s.sports.Insert(ctx, &sport); err != nil {
		return model.Sport{}, fmt.Errorf("insert sport: %w", err)
	}
	return sport, nil
}

// GetAllSports lists every sport. Public.
func (s *Service) GetAllSports(ctx context.Context) ([]model.Sport, error) {
	return s.sports.GetAll(ctx)
}

// UpdateSport updates a sport's name, description and capacity. Admin
// only. Renames are checked case-insensitively against existing
// sports. The capacity is deliberately left untouched while any
// reservation of the sport is ACTIVE: the update still succeeds and
// the returned advisory message tells the admin why the capacity was
// skipped. This is the single non-error anomaly of the engine.
func (s *Service) UpdateSport(ctx context.Context, caller Caller, id uint64, in SportInput) (model.Sport, string, error) {
	if !caller.IsAdmin() {
		return model.Sport{}, "", newError(KindForbidden, "only an administrator can update a sport")
	}
	sport, err := s.sports.GetByID(ctx, id)
	if err != nil {
		return model.Sport{}, "", s.mapSportErr(err, id)
	}

	newName := strings.TrimSpace(in.Name)
	if newName == "" {
		return model.Sport{}, "", newError(KindValidation, "sport name is required")
	}
	if !strings.EqualFold(strings.TrimSpace(sport.Name), newName) {
		exists, err := s.sports.ExistsByName(ctx, newName)
		if err != nil {
			return model.Sport{}, "", fmt.Errorf("check sport name: %w", err)
		}
		if exists {
			return model.Sport{}, "", newError(KindAlreadyExists, "a sport with the name '%s' already exists", newName)
		}
	}

	hasActive, err := s.reservations.ExistsActiveBySport(ctx, id)
	if err != nil {
		return model.Sport{}, "", fmt.Errorf("check active reservations: %w", err)
	}

	sport.Name = newName
	sport.Description = in.Description

	advisory := ""
	if in.PlayerCount != nil {
		if hasActive {
			advisory = "the number of players cannot be changed due to active reservations"
		} else {
			sport.PlayerCount = in.PlayerCount
		}
	}

	if err := s.sports.Update(ctx, sport); err != nil {
		return model.Sport{}, "", fmt.Errorf("update sport: %w", err)
	}
	return sport, advisory, nil
}

// DeleteSport removes a sport and cascades deletion of all its
// reservations. Admin only.
func (s *Service) DeleteSport(ctx context.Context, caller Caller, id uint64) error {
	if !caller.IsAdmin() {
		return newError(KindForbidden, "only an administrator can delete a sport")
	}
	if _, err := s.sports.GetByID(ctx, id); err != nil {
		return s.mapSportErr(err, id)
	}
	if err := s.reservations.DeleteBySport(ctx, id); err != nil {
		return fmt.Errorf("delete reservations of sport %d: %w", id, err)
	}
	if err := s.sports.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete sport %d: %w", id, err)
	}
	return nil
}

// SportStatistics returns reservation counts grouped by sport name.
// Admin only.
func (s *Service) SportStatistics(ctx context.Context, caller Caller) ([]SportReservationCount, error) {
	if !caller.IsAdmin() {
		return nil, newError(KindForbidden, "only an administrator can view sport statistics")
	}
	return s.reservations.CountBySport(ctx)
}
