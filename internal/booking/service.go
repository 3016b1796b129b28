package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/sport-facility-reservation/internal/model"
)

// Service orchestrates all reservation operations. Each mutating
// method runs as a single transaction: validation, conflict checks and
// writes either all commit or none do, so a multi-slot request can
// never be half-booked. Notifications go out only after commit and
// never roll anything back.
type Service struct {
	reservations ReservationStore
	sports       SportStore
	users        UserDirectory
	ratings      RatingStore
	notifier     Notifier
	schedule     ScheduleConfig
	now          func() time.Time
}

// NewService wires the engine to its stores. notifier may be nil, in
// which case activity notifications are skipped.
func NewService(reservations ReservationStore, sports SportStore, users UserDirectory, ratings RatingStore, notifier Notifier, schedule ScheduleConfig) *Service {
	if reservations == nil || sports == nil || users == nil || ratings == nil {
		panic("nil store passed to NewService")
	}
	return &Service{
		reservations: reservations,
		sports:       sports,
		users:        users,
		ratings:      ratings,
		notifier:     notifier,
		schedule:     schedule,
		now:          time.Now,
	}
}

// CreateReservationInput carries a reservation request. Participants
// lists additional usernames; the creator is implied and must not be
// counted against them.
type CreateReservationInput struct {
	SportID      uint64
	StartTime    time.Time
	EndTime      time.Time
	Participants []string
	OpenForJoin  bool
}

// CreateReservation validates the requested range, checks every
// participant's calendar over the full range, then checks and books
// each generated slot. A request spanning N slots produces N ACTIVE
// rows sharing the same participant list and open-for-join flag. The
// flag is persisted exactly as requested, even when the reservation is
// already at capacity; a later join against a full-but-open row fails
// on the capacity check instead. The whole batch is validated before
// anything is written.
func (s *Service) CreateReservation(ctx context.Context, caller Caller, in CreateReservationInput) ([]model.Reservation, error) {
	if _, err := s.users.FindByUsername(ctx, caller.Username); err != nil {
		return nil, s.mapUserErr(err, caller.Username)
	}
	sport, err := s.sports.GetByID(ctx, in.SportID)
	if err != nil {
		return nil, s.mapSportErr(err, in.SportID)
	}

	maxAdditional := sport.Capacity() - 1
	participants := dedupe(in.Participants, caller.Username)
	if len(participants) > maxAdditional {
		return nil, newError(KindCapacity, "maximum number of additional participants for %s is %d", sport.Name, maxAdditional)
	}

	members := append([]string{caller.Username}, participants...)
	found, err := s.users.FindAllByUsernameIn(ctx, members)
	if err != nil {
		return nil, fmt.Errorf("resolve participants: %w", err)
	}
	if len(found) != len(members) {
		return nil, newError(KindNotFound, "one or more participants were not found")
	}
	// Persist the directory's canonical usernames, not the request
	// casing, so participant checks always match the identity on the
	// caller's token.
	participants = canonicalize(participants, found)
	members = append([]string{caller.Username}, participants...)

	if err := s.schedule.Validate(s.now(), in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	tx, err := s.reservations.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, member := range members {
		if err := s.checkUserAvailability(ctx, tx, member, in.StartTime, in.EndTime); err != nil {
			return nil, err
		}
	}

	rows := make([]*model.Reservation, 0)
	for _, slot := range GenerateSlots(in.StartTime, in.EndTime, s.schedule.SlotDuration) {
		if err := s.checkSportAvailability(ctx, tx, in.SportID, slot.Start, slot.End, 0); err != nil {
			return nil, err
		}
		rows = append(rows, &model.Reservation{
			SportID:      in.SportID,
			Creator:      caller.Username,
			StartTime:    slot.Start,
			EndTime:      slot.End,
			Status:       model.StatusActive,
			OpenForJoin:  in.OpenForJoin,
			Participants: participants,
		})
	}
	if err := tx.InsertBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("insert reservations: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	committed = true

	s.notify(ctx, participants, fmt.Sprintf("%s added you to a %s reservation from %s to %s",
		caller.Username, sport.Name, in.StartTime.Format("2006-01-02 15:04"), in.EndTime.Format("15:04")))

	created := make([]model.Reservation, 0, len(rows))
	for _, r := range rows {
		created = append(created, *r)
	}
	return created, nil
}

// CancelReservation transitions an ACTIVE reservation to CANCELED.
// Only the creator or an admin may cancel.
func (s *Service) CancelReservation(ctx context.Context, caller Caller, id uint64) error {
	tx, err := s.reservations.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.GetForUpdate(ctx, id)
	if err != nil {
		return s.mapReservationErr(err, id)
	}
	if res.Creator != caller.Username && !caller.IsAdmin() {
		return newError(KindForbidden, "you are not allowed to cancel this reservation because you are not its owner or an admin")
	}
	if res.Status != model.StatusActive {
		return newError(KindNotActive, "the reservation cannot be canceled because it is not active, current status: %s", res.Status)
	}
	if err := tx.SetStatus(ctx, id, model.StatusCanceled); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true

	s.notify(ctx, res.Participants, fmt.Sprintf("the reservation on %s was canceled by %s",
		res.StartTime.Format("2006-01-02 15:04"), caller.Username))
	return nil
}

// BlockReservation transitions an ACTIVE reservation to BLOCKED.
// Admin only; BLOCKED is terminal and excludes the slot from booking.
func (s *Service) BlockReservation(ctx context.Context, caller Caller, id uint64) error {
	if !caller.IsAdmin() {
		return newError(KindForbidden, "only an administrator can block a reservation")
	}
	tx, err := s.reservations.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.GetForUpdate(ctx, id)
	if err != nil {
		return s.mapReservationErr(err, id)
	}
	if res.Status != model.StatusActive {
		return newError(KindNotActive, "the reservation cannot be blocked because it is not active, current status: %s", res.Status)
	}
	if err := tx.SetStatus(ctx, id, model.StatusBlocked); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// UpdateReservationTime overwrites the start and end of an ACTIVE
// reservation in place. Admin only. The reservation's own row is
// excluded from the overlap check so it never conflicts with itself;
// slots are not regenerated and participants are untouched.
func (s *Service) UpdateReservationTime(ctx context.Context, caller Caller, id uint64, newStart, newEnd time.Time) (model.Reservation, error) {
	if !caller.IsAdmin() {
		return model.Reservation{}, newError(KindForbidden, "only an administrator can change a reservation's time")
	}
	tx, err := s.reservations.Begin(ctx)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.GetForUpdate(ctx, id)
	if err != nil {
		return model.Reservation{}, s.mapReservationErr(err, id)
	}
	if res.Status != model.StatusActive {
		return model.Reservation{}, newError(KindNotActive, "the reservation cannot be changed because it is not active, current status: %s", res.Status)
	}
	if err := s.schedule.Validate(s.now(), newStart, newEnd); err != nil {
		return model.Reservation{}, err
	}
	if err := s.checkSportAvailability(ctx, tx, res.SportID, newStart, newEnd, res.ID); err != nil {
		return model.Reservation{}, err
	}
	if err := tx.UpdateTime(ctx, id, newStart, newEnd); err != nil {
		return model.Reservation{}, fmt.Errorf("update time: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Reservation{}, fmt.Errorf("commit transaction: %w", err)
	}
	committed = true

	res.StartTime = newStart
	res.EndTime = newEnd
	return res, nil
}

// CreateBlockedReservation blocks a whole time range for maintenance
// or events. Admin only. Pre-existing reservations overlapping the
// range are demoted to BLOCKED (not deleted), then fresh BLOCKED rows
// are created covering every slot of the range. The first created row
// is returned.
func (s *Service) CreateBlockedReservation(ctx context.Context, caller Caller, sportID uint64, start, end time.Time) (model.Reservation, error) {
	if !caller.IsAdmin() {
		return model.Reservation{}, newError(KindForbidden, "only an administrator can create a blocked reservation")
	}
	sport, err := s.sports.GetByID(ctx, sportID)
	if err != nil {
		return model.Reservation{}, s.mapSportErr(err, sportID)
	}
	if err := s.schedule.Validate(s.now(), start, end); err != nil {
		return model.Reservation{}, err
	}

	tx, err := s.reservations.Begin(ctx)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	conflicts, err := tx.FindOverlappingBySport(ctx, sport.ID, start, end, 0)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("find overlapping: %w", err)
	}
	if len(conflicts) > 0 {
		ids := make([]uint64, 0, len(conflicts))
		for _, c := range conflicts {
			ids = append(ids, c.ID)
		}
		if err := tx.SetStatuses(ctx, ids, model.StatusBlocked); err != nil {
			return model.Reservation{}, fmt.Errorf("block conflicting reservations: %w", err)
		}
	}

	rows := make([]*model.Reservation, 0)
	for _, slot := range GenerateSlots(start, end, s.schedule.SlotDuration) {
		rows = append(rows, &model.Reservation{
			SportID:   sport.ID,
			Creator:   caller.Username,
			StartTime: slot.Start,
			EndTime:   slot.End,
			Status:    model.StatusBlocked,
		})
	}
	if err := tx.InsertBatch(ctx, rows); err != nil {
		return model.Reservation{}, fmt.Errorf("insert blocked reservations: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Reservation{}, fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return *rows[0], nil
}

// JoinReservation attaches the caller to an open ACTIVE reservation.
// The reservation row is locked for the whole check-then-write so two
// concurrent joins cannot both squeeze into the last free place. When
// the join fills the last place the reservation closes for joining.
func (s *Service) JoinReservation(ctx context.Context, caller Caller, id uint64) (model.Reservation, error) {
	if _, err := s.users.FindByUsername(ctx, caller.Username); err != nil {
		return model.Reservation{}, s.mapUserErr(err, caller.Username)
	}

	tx, err := s.reservations.Begin(ctx)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.GetForUpdate(ctx, id)
	if err != nil {
		return model.Reservation{}, s.mapReservationErr(err, id)
	}
	if res.Status != model.StatusActive {
		return model.Reservation{}, newError(KindNotActive, "you cannot join this reservation because it is not active, current status: %s", res.Status)
	}
	if !res.OpenForJoin {
		return model.Reservation{}, newError(KindNotOpenForJoin, "you cannot join this reservation because the creator has closed it for additional participants")
	}
	if res.Creator == caller.Username || res.HasParticipant(caller.Username) {
		return model.Reservation{}, newError(KindAlreadyParticipant, "you are already part of this reservation")
	}
	sport, err := s.sports.GetByID(ctx, res.SportID)
	if err != nil {
		return model.Reservation{}, s.mapSportErr(err, res.SportID)
	}
	maxAdditional := sport.Capacity() - 1
	if len(res.Participants) >= maxAdditional {
		return model.Reservation{}, newError(KindCapacity, "max number of participants for %s is already reached", sport.Name)
	}
	if err := s.checkUserAvailability(ctx, tx, caller.Username, res.StartTime, res.EndTime); err != nil {
		return model.Reservation{}, err
	}

	res.Participants = append(res.Participants, caller.Username)
	if len(res.Participants) >= maxAdditional {
		res.OpenForJoin = false
	}
	if err := tx.UpdateParticipants(ctx, id, res.Participants, res.OpenForJoin); err != nil {
		return model.Reservation{}, fmt.Errorf("update participants: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Reservation{}, fmt.Errorf("commit transaction: %w", err)
	}
	committed = true

	s.notify(ctx, []string{res.Creator}, fmt.Sprintf("%s joined your %s reservation on %s",
		caller.Username, sport.Name, res.StartTime.Format("2006-01-02 15:04")))
	return res, nil
}

// LeaveReservation detaches the caller from an ACTIVE reservation.
// The creator cannot leave and must cancel instead. Dropping below
// capacity re-opens the reservation for joining even when the creator
// had closed it manually; this mirrors the behavior the facility has
// been running with.
func (s *Service) LeaveReservation(ctx context.Context, caller Caller, id uint64) (model.Reservation, error) {
	if _, err := s.users.FindByUsername(ctx, caller.Username); err != nil {
		return model.Reservation{}, s.mapUserErr(err, caller.Username)
	}

	tx, err := s.reservations.Begin(ctx)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.GetForUpdate(ctx, id)
	if err != nil {
		return model.Reservation{}, s.mapReservationErr(err, id)
	}
	if res.Status != model.StatusActive {
		return model.Reservation{}, newError(KindNotActive, "you cannot leave this reservation because it is not active, current status: %s", res.Status)
	}
	if res.Creator == caller.Username {
		return model.Reservation{}, newError(KindValidation, "you cannot remove yourself from a reservation you created, cancel the reservation instead")
	}
	if !res.HasParticipant(caller.Username) {
		return model.Reservation{}, newError(KindNotAParticipant, "you are not part of this reservation")
	}
	sport, err := s.sports.GetByID(ctx, res.SportID)
	if err != nil {
		return model.Reservation{}, s.mapSportErr(err, res.SportID)
	}

	remaining := make([]string, 0, len(res.Participants)-1)
	for _, p := range res.Participants {
		if p != caller.Username {
			remaining = append(remaining, p)
		}
	}
	res.Participants = remaining
	if len(remaining) < sport.Capacity()-1 {
		res.OpenForJoin = true
	}
	if err := tx.UpdateParticipants(ctx, id, res.Participants, res.OpenForJoin); err != nil {
		return model.Reservation{}, fmt.Errorf("update participants: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Reservation{}, fmt.Errorf("commit transaction: %w", err)
	}
	committed = true

	s.notify(ctx, []string{res.Creator}, fmt.Sprintf("%s left your %s reservation on %s",
		caller.Username, sport.Name, res.StartTime.Format("2006-01-02 15:04")))
	return res, nil
}

// GetAllReservations returns every reservation regardless of status.
func (s *Service) GetAllReservations(ctx context.Context) ([]model.Reservation, error) {
	return s.reservations.ListAll(ctx)
}

// GetUserReservations returns the caller's reservations, as creator or
// participant.
func (s *Service) GetUserReservations(ctx context.Context, caller Caller) ([]model.Reservation, error) {
	if _, err := s.users.FindByUsername(ctx, caller.Username); err != nil {
		return nil, s.mapUserErr(err, caller.Username)
	}
	return s.reservations.ListByUser(ctx, caller.Username)
}

// SportReservations groups reservations under a sport name for the
// by-sport read surfaces.
type SportReservations struct {
	Sport        string              `json:"sport"`
	Reservations []model.Reservation `json:"reservations"`
}

// GetAllReservationsBySport groups every reservation by sport name,
// sorted by name for deterministic output.
func (s *Service) GetAllReservationsBySport(ctx context.Context) ([]SportReservations, error) {
	all, err := s.reservations.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.groupBySport(ctx, all)
}

// GetUserActiveReservationsBySport groups the caller's ACTIVE
// reservations by sport name.
func (s *Service) GetUserActiveReservationsBySport(ctx context.Context, caller Caller) ([]SportReservations, error) {
	mine, err := s.GetUserReservations(ctx, caller)
	if err != nil {
		return nil, err
	}
	active := make([]model.Reservation, 0, len(mine))
	for _, r := range mine {
		if r.Status == model.StatusActive {
			active = append(active, r)
		}
	}
	return s.groupBySport(ctx, active)
}

func (s *Service) groupBySport(ctx context.Context, reservations []model.Reservation) ([]SportReservations, error) {
	sports, err := s.sports.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sports: %w", err)
	}
	names := make(map[uint64]string, len(sports))
	for _, sp := range sports {
		names[sp.ID] = sp.Name
	}
	grouped := make(map[string][]model.Reservation)
	for _, r := range reservations {
		name, ok := names[r.SportID]
		if !ok {
			continue
		}
		grouped[name] = append(grouped[name], r)
	}
	out := make([]SportReservations, 0, len(grouped))
	for name, rs := range grouped {
		out = append(out, SportReservations{Sport: name, Reservations: rs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sport < out[j].Sport })
	return out, nil
}

// checkSportAvailability fails when any ACTIVE or BLOCKED reservation
// of the sport overlaps [start,end). A BLOCKED overlap wins over an
// ACTIVE one in the reported error even when both are present.
func (s *Service) checkSportAvailability(ctx context.Context, tx ReservationTx, sportID uint64, start, end time.Time, excludeID uint64) error {
	conflicts, err := tx.FindOverlappingBySport(ctx, sportID, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("find overlapping: %w", err)
	}
	hasActive := false
	for _, c := range conflicts {
		if c.Status == model.StatusBlocked {
			return newError(KindResourceConflict, "you cannot create a reservation in this time slot because it is blocked by an admin")
		}
		if c.Status == model.StatusActive {
			hasActive = true
		}
	}
	if hasActive {
		return newError(KindResourceConflict, "the sport is already taken in the selected time slot")
	}
	return nil
}

// checkUserAvailability fails when the user is creator or participant
// of another ACTIVE reservation overlapping [start,end).
func (s *Service) checkUserAvailability(ctx context.Context, tx ReservationTx, username string, start, end time.Time) error {
	conflicts, err := tx.FindUserOverlap(ctx, username, start, end)
	if err != nil {
		return fmt.Errorf("find user overlap: %w", err)
	}
	if len(conflicts) > 0 {
		return newError(KindUserConflict, "user %s already has a reservation at this time in another sport", username)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, recipients []string, message string) {
	if s.notifier == nil || len(recipients) == 0 {
		return
	}
	s.notifier.Notify(ctx, recipients, message)
}

func (s *Service) mapReservationErr(err error, id uint64) error {
	if errors.Is(err, ErrReservationNotFound) {
		return newError(KindNotFound, "reservation with id %d was not found", id)
	}
	return fmt.Errorf("load reservation %d: %w", id, err)
}

func (s *Service) mapSportErr(err error, id uint64) error {
	if errors.Is(err, ErrSportNotFound) {
		return newError(KindNotFound, "sport with id %d was not found", id)
	}
	return fmt.Errorf("load sport %d: %w", id, err)
}

func (s *Service) mapUserErr(err error, username string) error {
	if errors.Is(err, ErrUserNotFound) {
		return newError(KindNotFound, "user %s was not found", username)
	}
	return fmt.Errorf("load user %s: %w", username, err)
}

// canonicalize maps each requested participant name onto the username
// of its resolved directory entry, preserving request order. Callers
// must have verified that every name resolved.
func canonicalize(participants []string, found []model.User) []string {
	out := make([]string, 0, len(participants))
	for _, name := range participants {
		for _, u := range found {
			if strings.EqualFold(strings.TrimSpace(name), u.Username) {
				out = append(out, u.Username)
				break
			}
		}
	}
	return out
}

// dedupe returns the usernames in order with duplicates and the
// creator removed, comparing case-insensitively.
func dedupe(usernames []string, creator string) []string {
	seen := map[string]struct{}{strings.ToLower(creator): {}}
	out := make([]string, 0, len(usernames))
	for _, u := range usernames {
		key := strings.ToLower(strings.TrimSpace(u))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}
	return out
}
