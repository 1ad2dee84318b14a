package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-sports/service-booking/internal/domain"
	bookingDomain "github.com/campus-sports/service-booking/internal/domain/booking"
	courtDomain "github.com/campus-sports/service-booking/internal/domain/court"
	"github.com/campus-sports/service-booking/internal/domain/schedule"
	userDomain "github.com/campus-sports/service-booking/internal/domain/user"
	"github.com/campus-sports/service-booking/internal/events"
	"github.com/campus-sports/service-booking/internal/settings"
)

// MaxDailyCreations bounds how many bookings a user may create per operational
// day, counting every attempt that produced a row regardless of later status.
const MaxDailyCreations = 5

// CreateBookingRequest is the DTO for creating a new booking.
type CreateBookingRequest struct {
	CourtID          uuid.UUID `json:"courtId" binding:"required"`
	Date             string    `json:"date" binding:"required"`
	TimeSlots        []string  `json:"timeSlots" binding:"required,min=1"`
	Kind             string    `json:"kind"`
	ActivityType     string    `json:"activityType"`
	Note             string    `json:"note"`
	ParticipantCodes []string  `json:"participantCodes"`
	ConfirmReplace   bool      `json:"confirmReplace"`
}

// CreateBookingResult carries the created booking plus an optional advisory
// warning (for example, that the user's last daily right was used).
type CreateBookingResult struct {
	Booking *BookingDTO `json:"booking"`
	Warning string      `json:"warning,omitempty"`
}

// BookingDTO is the API response DTO for booking data.
type BookingDTO struct {
	ID                 uuid.UUID        `json:"id"`
	OwnerID            uuid.UUID        `json:"ownerId"`
	OwnerName          string           `json:"ownerName"`
	CourtID            uuid.UUID        `json:"courtId"`
	CourtName          string           `json:"courtName"`
	CourtType          string           `json:"courtType"`
	Date               string           `json:"date"`
	TimeSlots          []string         `json:"timeSlots"`
	Kind               string           `json:"kind"`
	ActivityType       string           `json:"activityType,omitempty"`
	Note               string           `json:"note,omitempty"`
	Status             string           `json:"status"`
	RequiredPlayers    int              `json:"requiredPlayers"`
	Participants       []ParticipantDTO `json:"participants"`
	IsQRVerified       bool             `json:"isQrVerified"`
	IsLocationVerified bool             `json:"isLocationVerified"`
	AutoCancelled      bool             `json:"autoCancelled"`
	IsLateCancellation bool             `json:"isLateCancellation"`
	CancellationReason string           `json:"cancellationReason,omitempty"`
	ConfirmedAt        *time.Time       `json:"confirmedAt,omitempty"`
	CheckedInAt        *time.Time       `json:"checkedInAt,omitempty"`
	CompletedAt        *time.Time       `json:"completedAt,omitempty"`
	CancelledAt        *time.Time       `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
}

// ParticipantDTO is one group member in a booking response.
type ParticipantDTO struct {
	UserID   uuid.UUID `json:"userId"`
	UserName string    `json:"userName"`
	UserCode string    `json:"userCode"`
}

// SlotOccupancyDTO describes one taken slot in a court's daily schedule.
type SlotOccupancyDTO struct {
	Slot         string `json:"slot"`
	BookingID    string `json:"bookingId"`
	OccupantName string `json:"occupantName"`
	Status       string `json:"status"`
}

// ReplaceRequiredError is returned when creating a booking would exceed the
// user's quota but their existing active bookings could be released instead.
// The handler turns it into a 409 carrying the replaceable bookings so the
// client can re-submit with confirmReplace set.
type ReplaceRequiredError struct {
	Existing []BookingDTO
}

func (e *ReplaceRequiredError) Error() string {
	return "daily booking limit reached; confirm replacing your existing booking"
}

// BookingService orchestrates the booking lifecycle: creation with quota and
// conflict enforcement, state transitions, and cancellation with the
// free-window policy.
type BookingService struct {
	bookings  bookingDomain.Repository
	users     userDomain.Repository
	courts    courtDomain.Repository
	rights    *RightsService
	penalties *PenaltyService
	policy    *settings.Store
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.Repository,
	users userDomain.Repository,
	courts courtDomain.Repository,
	rights *RightsService,
	penalties *PenaltyService,
	policy *settings.Store,
	notifier Notifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		users:     users,
		courts:    courts,
		rights:    rights,
		penalties: penalties,
		policy:    policy,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Create runs the full creation pipeline: validation, eligibility, rate limit,
// conflict check, quota for owner and participants, participant resolution,
// and finally the transactional insert with slot holds.
func (s *BookingService) Create(ctx context.Context, ownerID uuid.UUID, req CreateBookingRequest) (*CreateBookingResult, error) {
	date, err := schedule.NormalizeDate(req.Date)
	if err != nil {
		return nil, err
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	if _, ok := schedule.EarliestStartMinutes(req.TimeSlots); !ok {
		return nil, domain.NewValidationError("no valid time slots provided")
	}

	now := s.now().UTC()
	boundary := s.policy.GetInt(ctx, settings.KeyResetBoundaryHour, settings.DefaultResetBoundaryHour)
	if date < schedule.OperationalDate(now, boundary) {
		return nil, domain.NewValidationError("cannot book a date in the past")
	}

	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.checkEligibility(ctx, owner, date); err != nil {
		return nil, err
	}
	if err := s.checkCreationRateLimit(ctx, ownerID, now, boundary); err != nil {
		return nil, err
	}

	crt, err := s.courts.FindByID(ctx, req.CourtID)
	if err != nil {
		return nil, err
	}
	if !crt.IsActive() {
		return nil, domain.NewValidationError("court is not available for booking")
	}

	if err := s.checkSlotConflicts(ctx, crt.ID(), date, req.TimeSlots); err != nil {
		return nil, err
	}

	participants, err := s.resolveParticipants(ctx, owner, crt, date, req.ParticipantCodes)
	if err != nil {
		return nil, err
	}

	remaining, err := s.rights.RemainingRights(ctx, owner, date)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		replaceable, err := s.replaceableBookings(ctx, ownerID, date)
		if err != nil {
			return nil, err
		}
		if len(replaceable) == 0 {
			return nil, domain.NewQuotaError("you have no booking rights left for " + date)
		}
		if !req.ConfirmReplace {
			return nil, &ReplaceRequiredError{Existing: toBookingDTOs(replaceable)}
		}
		if err := s.cancelForReplacement(ctx, replaceable, now); err != nil {
			return nil, err
		}
	}

	b := bookingDomain.NewBooking(
		ownerID, owner.DisplayName(), owner.StudentID(),
		crt.ID(), crt.Name(), crt.Category(),
		date, req.TimeSlots, kind, req.ActivityType, req.Note,
		crt.RequiredPlayers(), participants,
	)
	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, err
	}

	for _, p := range participants {
		s.notifier.Notify(ctx, events.EventTypeCodeUsed, events.Notification{
			TargetUserID: p.UserID,
			Title:        "Added to a booking",
			Body:         fmt.Sprintf("%s added you to a booking at %s on %s", owner.DisplayName(), crt.Name(), date),
			RelatedID:    b.ID().String(),
		})
	}

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID().String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("court_id", crt.ID().String()),
		zap.String("date", date),
		zap.Strings("slots", req.TimeSlots),
	)

	var warning string
	if remaining == 1 {
		surcharge := s.policy.GetInt(ctx, settings.KeyNoShowExtraRightsPenalty, settings.DefaultNoShowExtraRightsPenalty)
		warning = fmt.Sprintf(
			"this booking used your last booking right for %s; missing check-in will auto-cancel it and consume %d booking rights as a no-show penalty",
			date, 1+surcharge,
		)
	}
	dto := toBookingDTO(b)
	return &CreateBookingResult{Booking: &dto, Warning: warning}, nil
}

// CreatePrivileged is the administrative creation path: the booking starts
// directly in checked-in state and bypasses quota, rate-limit and participant
// requirements. Slot conflicts still apply.
func (s *BookingService) CreatePrivileged(ctx context.Context, adminID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	date, err := schedule.NormalizeDate(req.Date)
	if err != nil {
		return nil, err
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	if len(req.TimeSlots) == 0 {
		return nil, domain.NewValidationError("no time slots provided")
	}

	admin, err := s.users.FindByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	crt, err := s.courts.FindByID(ctx, req.CourtID)
	if err != nil {
		return nil, err
	}

	if err := s.checkSlotConflicts(ctx, crt.ID(), date, req.TimeSlots); err != nil {
		return nil, err
	}

	b := bookingDomain.NewPrivilegedBooking(
		adminID, admin.DisplayName(),
		crt.ID(), crt.Name(), crt.Category(),
		date, req.TimeSlots, kind, req.ActivityType, req.Note,
		crt.RequiredPlayers(),
	)
	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("privileged booking created",
		zap.String("booking_id", b.ID().String()),
		zap.String("admin_id", adminID.String()),
		zap.String("date", date),
	)
	dto := toBookingDTO(b)
	return &dto, nil
}

// Cancel performs a user-initiated cancellation. Every cancellation, free or
// late, consumes one daily right for each involved user; a late cancellation
// additionally triggers the point penalty when one is configured.
func (s *BookingService) Cancel(ctx context.Context, callerID uuid.UUID, bookingID uuid.UUID, reason string) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID() != callerID {
		return nil, domain.NewForbiddenError("only the booking owner can cancel it")
	}

	now := s.now().UTC()
	freeHours := s.policy.GetNumber(ctx, settings.KeyCancelFreeHours, settings.DefaultCancelFreeHours)
	start, ok := schedule.EarliestStartMinutes(b.TimeSlots())
	if !ok {
		start = 0
	}
	assessment := bookingDomain.AssessCancellation(now, b.Date(), start, freeHours)
	if !assessment.Allowed {
		return nil, domain.NewStateError(assessment.Reason)
	}

	if reason == "" {
		reason = "cancelled by user"
	}
	if err := b.Cancel(now, reason, assessment.Late); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	// The consumed right survives the cancellation: freeing the slot does not
	// refund the day's quota.
	for _, userID := range b.InvolvedUserIDs() {
		uid := userID
		if err := s.users.AtomicUpdate(ctx, uid, func(u *userDomain.User) error {
			u.ConsumeRights(b.Date(), 1, now)
			return nil
		}); err != nil {
			s.logger.Error("failed to consume right on cancellation",
				zap.String("booking_id", b.ID().String()),
				zap.String("user_id", uid.String()),
				zap.Error(err),
			)
		}
	}

	if assessment.Late {
		penaltyPoints := s.policy.GetInt(ctx, settings.KeyPenaltyLateCancel, settings.DefaultPenaltyLateCancel)
		if penaltyPoints > 0 {
			s.penalties.ApplyGroupPenalty(ctx, b, penaltyPoints, "late cancellation", 0)
		}
	}

	s.logger.Info("booking cancelled",
		zap.String("booking_id", b.ID().String()),
		zap.String("owner_id", b.OwnerID().String()),
		zap.Bool("late", assessment.Late),
	)
	dto := toBookingDTO(b)
	return &dto, nil
}

// UpdateStatus moves a booking along the lifecycle. Reaching checked-in (or
// completed, for bookings that never passed through the check-in transition
// here) triggers the group bonus award; the booking-level points claim keeps
// the award single-shot across both transitions.
func (s *BookingService) UpdateStatus(ctx context.Context, callerID uuid.UUID, isAdmin bool, bookingID uuid.UUID, target string) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.OwnerID() != callerID {
		return nil, domain.NewForbiddenError("only the booking owner can update its status")
	}

	now := s.now().UTC()
	switch bookingDomain.Status(target) {
	case bookingDomain.StatusConfirmed:
		qrRequired := s.policy.GetBool(ctx, settings.KeyRequireQRVerification, true)
		if err := b.Confirm(now, qrRequired); err != nil {
			return nil, err
		}
	case bookingDomain.StatusCheckedIn:
		locationRequired := s.policy.GetBool(ctx, settings.KeyRequireLocationVerify, true)
		if err := b.CheckIn(now, locationRequired); err != nil {
			return nil, err
		}
	case bookingDomain.StatusCompleted:
		if err := b.Complete(now); err != nil {
			return nil, err
		}
	default:
		return nil, domain.NewValidationError("unsupported status transition: " + target)
	}

	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	switch b.Status() {
	case bookingDomain.StatusCheckedIn, bookingDomain.StatusCompleted:
		s.awardBonus(ctx, b)
	}

	dto := toBookingDTO(b)
	return &dto, nil
}

// CheckInWithProof is the on-site verification path: the caller presents QR
// and location proof together and the booking moves straight to checked-in
// with both flags recorded. The group bonus is awarded here too.
func (s *BookingService) CheckInWithProof(ctx context.Context, callerID uuid.UUID, bookingID uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.Involves(callerID) {
		return nil, domain.NewForbiddenError("you are not a member of this booking")
	}
	if err := b.CheckInWithProof(s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}
	s.awardBonus(ctx, b)
	dto := toBookingDTO(b)
	return &dto, nil
}

// awardBonus grants the check-in bonus to every booking member, at most once
// per booking.
func (s *BookingService) awardBonus(ctx context.Context, b *bookingDomain.Booking) {
	bonus := s.policy.GetInt(ctx, settings.KeyBonusCompletedBooking, settings.DefaultBonusCompletedBooking)
	if _, err := s.penalties.AwardGroupBonus(ctx, b, bonus); err != nil {
		s.logger.Error("bonus award failed",
			zap.String("booking_id", b.ID().String()),
			zap.Error(err),
		)
	}
}

// GetBooking returns one booking visible to the caller.
func (s *BookingService) GetBooking(ctx context.Context, callerID uuid.UUID, isAdmin bool, bookingID uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !b.Involves(callerID) {
		return nil, domain.NewForbiddenError("you are not a member of this booking")
	}
	dto := toBookingDTO(b)
	return &dto, nil
}

// CourtSchedule returns the occupied slots of a court on a date, with the
// occupant's display name per slot.
func (s *BookingService) CourtSchedule(ctx context.Context, courtID uuid.UUID, rawDate string) ([]SlotOccupancyDTO, error) {
	date, err := schedule.NormalizeDate(rawDate)
	if err != nil {
		return nil, err
	}
	all, err := s.bookings.ListByCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	occupied := make([]SlotOccupancyDTO, 0)
	for _, b := range all {
		if b.Date() != date || !b.Blocks() {
			continue
		}
		for _, slot := range b.TimeSlots() {
			occupied = append(occupied, SlotOccupancyDTO{
				Slot:         slot,
				BookingID:    b.ID().String(),
				OccupantName: b.OwnerName(),
				Status:       string(b.Status()),
			})
		}
	}
	return occupied, nil
}

// UserBookings returns every booking the user owns or participates in.
func (s *BookingService) UserBookings(ctx context.Context, userID uuid.UUID) ([]BookingDTO, error) {
	owned, err := s.bookings.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	joined, err := s.bookings.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]struct{}, len(owned))
	merged := make([]*bookingDomain.Booking, 0, len(owned)+len(joined))
	for _, b := range append(owned, joined...) {
		if _, dup := seen[b.ID()]; dup {
			continue
		}
		seen[b.ID()] = struct{}{}
		merged = append(merged, b)
	}
	return toBookingDTOs(merged), nil
}

// ExpiredToday lists the bookings auto-cancelled by the expiry sweep on the
// current operational day in which the caller was owner or participant.
func (s *BookingService) ExpiredToday(ctx context.Context, callerID uuid.UUID) ([]BookingDTO, error) {
	now := s.now().UTC()
	boundary := s.policy.GetInt(ctx, settings.KeyResetBoundaryHour, settings.DefaultResetBoundaryHour)
	date := schedule.OperationalDate(now, boundary)

	all, err := s.bookings.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	expired := make([]*bookingDomain.Booking, 0)
	for _, b := range all {
		if b.AutoCancelled() && b.Involves(callerID) {
			expired = append(expired, b)
		}
	}
	return toBookingDTOs(expired), nil
}

// --- internal helpers ---

// checkEligibility applies the account-level booking gates.
func (s *BookingService) checkEligibility(ctx context.Context, u *userDomain.User, date string) error {
	if !u.IsActive() {
		return domain.NewForbiddenError("account is deactivated")
	}
	if !u.IsEmailVerified() {
		return domain.NewForbiddenError("verify your email address before booking")
	}
	if u.IsRequestBlocked() {
		return domain.NewForbiddenError("your account is blocked from making bookings")
	}
	if u.IsBannedOn(date) {
		return domain.NewForbiddenError("you are banned from booking on " + date)
	}
	if u.Points() <= 0 {
		return domain.NewForbiddenError("insufficient points to make a booking")
	}
	allowNonUniversity := s.policy.GetBool(ctx, settings.KeyAllowNonUniversityBooking, false)
	if !allowNonUniversity && !u.HasUniversityEmail() {
		return domain.NewForbiddenError("booking is limited to university accounts")
	}
	return nil
}

// checkCreationRateLimit counts rows created by the owner on the current
// operational day, regardless of their eventual status.
func (s *BookingService) checkCreationRateLimit(ctx context.Context, ownerID uuid.UUID, now time.Time, boundaryHour int) error {
	owned, err := s.bookings.ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	today := schedule.OperationalDate(now, boundaryHour)
	created := 0
	for _, b := range owned {
		if schedule.OperationalDate(b.CreatedAt(), boundaryHour) == today {
			created++
		}
	}
	if created >= MaxDailyCreations {
		return domain.NewRateLimitError(fmt.Sprintf("you can create at most %d bookings per day", MaxDailyCreations))
	}
	return nil
}

// checkSlotConflicts is the read-then-decide pass that produces an error
// naming the occupant. The database-level slot holds remain the authority: a
// booking racing past this check still fails on insert.
func (s *BookingService) checkSlotConflicts(ctx context.Context, courtID uuid.UUID, date string, slots []string) error {
	existing, err := s.bookings.ListByCourt(ctx, courtID)
	if err != nil {
		return err
	}
	requested := make(map[string]struct{}, len(slots))
	for _, slot := range slots {
		requested[strings.TrimSpace(slot)] = struct{}{}
	}
	for _, b := range existing {
		if b.Date() != date || !b.Blocks() {
			continue
		}
		for _, slot := range b.TimeSlots() {
			if _, taken := requested[slot]; taken {
				return domain.NewConflictError(fmt.Sprintf("slot %s is already booked by %s", slot, b.OwnerName()))
			}
		}
	}
	return nil
}

// resolveParticipants turns the submitted participant codes into verified
// group members. The group must have exactly requiredPlayers members
// including the owner.
func (s *BookingService) resolveParticipants(ctx context.Context, owner *userDomain.User, crt *courtDomain.Court, date string, codes []string) ([]bookingDomain.Participant, error) {
	needed := crt.RequiredPlayers() - 1
	if needed <= 0 {
		needed = 0
	}
	cleaned := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code != "" {
			cleaned = append(cleaned, code)
		}
	}
	if len(cleaned) != needed {
		return nil, domain.NewValidationError(fmt.Sprintf("this court requires %d participant codes, got %d", needed, len(cleaned)))
	}

	participants := make([]bookingDomain.Participant, 0, needed)
	seen := make(map[string]struct{}, needed)
	for _, code := range cleaned {
		if code == owner.UserCode() {
			return nil, domain.NewValidationError("you cannot use your own participant code")
		}
		if _, dup := seen[code]; dup {
			return nil, domain.NewValidationError("duplicate participant code: " + code)
		}
		seen[code] = struct{}{}

		p, err := s.users.FindByCode(ctx, code)
		if err != nil {
			return nil, domain.NewValidationError("participant code not found: " + code)
		}
		if !p.IsActive() || !p.IsEmailVerified() {
			return nil, domain.NewValidationError("participant " + p.DisplayName() + " cannot join bookings")
		}
		if p.Points() <= 0 {
			return nil, domain.NewValidationError("participant " + p.DisplayName() + " has insufficient points")
		}
		remaining, err := s.rights.RemainingRights(ctx, p, date)
		if err != nil {
			return nil, err
		}
		if remaining <= 0 {
			return nil, domain.NewQuotaError("participant " + p.DisplayName() + " has no booking rights left for " + date)
		}
		participants = append(participants, bookingDomain.Participant{
			UserID:   p.ID(),
			UserName: p.FullName(),
			UserCode: p.UserCode(),
		})
	}
	return participants, nil
}

// replaceableBookings are the owner's own still-blocking bookings on the date;
// these are the candidates the replace flow offers to cancel.
func (s *BookingService) replaceableBookings(ctx context.Context, ownerID uuid.UUID, date string) ([]*bookingDomain.Booking, error) {
	owned, err := s.bookings.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*bookingDomain.Booking, 0)
	for _, b := range owned {
		if b.Date() == date && b.Blocks() && b.Status() != bookingDomain.StatusCheckedIn {
			out = append(out, b)
		}
	}
	return out, nil
}

// cancelForReplacement cancels the replaced bookings in one transaction.
func (s *BookingService) cancelForReplacement(ctx context.Context, replaced []*bookingDomain.Booking, now time.Time) error {
	for _, b := range replaced {
		if err := b.Cancel(now, "replaced by a new booking", false); err != nil {
			return err
		}
	}
	if err := s.bookings.CancelBatch(ctx, replaced); err != nil {
		return err
	}
	for _, b := range replaced {
		s.logger.Info("booking replaced",
			zap.String("booking_id", b.ID().String()),
			zap.String("owner_id", b.OwnerID().String()),
		)
	}
	return nil
}

func parseKind(raw string) (bookingDomain.Kind, error) {
	switch bookingDomain.Kind(raw) {
	case "", bookingDomain.KindRegular:
		return bookingDomain.KindRegular, nil
	case bookingDomain.KindActivity:
		return bookingDomain.KindActivity, nil
	}
	return "", domain.NewValidationError("unknown booking kind: " + raw)
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	out := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		out[i] = toBookingDTO(b)
	}
	return out
}

func toBookingDTO(b *bookingDomain.Booking) BookingDTO {
	participants := make([]ParticipantDTO, len(b.Participants()))
	for i, p := range b.Participants() {
		participants[i] = ParticipantDTO{
			UserID:   p.UserID,
			UserName: p.UserName,
			UserCode: p.UserCode,
		}
	}
	return BookingDTO{
		ID:                 b.ID(),
		OwnerID:            b.OwnerID(),
		OwnerName:          b.OwnerName(),
		CourtID:            b.CourtID(),
		CourtName:          b.CourtName(),
		CourtType:          b.CourtType(),
		Date:               b.Date(),
		TimeSlots:          b.TimeSlots(),
		Kind:               string(b.Kind()),
		ActivityType:       b.ActivityType(),
		Note:               b.Note(),
		Status:             string(b.Status()),
		RequiredPlayers:    b.RequiredPlayers(),
		Participants:       participants,
		IsQRVerified:       b.IsQRVerified(),
		IsLocationVerified: b.IsLocationVerified(),
		AutoCancelled:      b.AutoCancelled(),
		IsLateCancellation: b.IsLateCancellation(),
		CancellationReason: b.CancellationReason(),
		ConfirmedAt:        b.ConfirmedAt(),
		CheckedInAt:        b.CheckedInAt(),
		CompletedAt:        b.CompletedAt(),
		CancelledAt:        b.CancelledAt(),
		CreatedAt:          b.CreatedAt(),
	}
}
