package service

import (
	"context"
	"fmt"
	"time"

	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/opdexport/quotation-api/internal/repository"
	"go.uber.org/zap"
)

// DocumentNumberService generates unique, formatted quotation numbers.
//
// Format: {PREFIX}{YYYYMMDD}{SEQUENCE}
// Example: OPDEXPORT20260828001
//
// The counter is shared by all companies and resets each calendar day. Days
// roll over at UTC midnight, so every instance derives the same counter row
// regardless of host timezone. The date component is captured once at
// allocation start so an allocation that straddles midnight stays internally
// consistent.
type DocumentNumberService struct {
	repo   *repository.DocumentSequenceRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewDocumentNumberService creates a new DocumentNumberService
func NewDocumentNumberService(
	repo *repository.DocumentSequenceRepository,
	logger *zap.Logger,
) *DocumentNumberService {
	return &DocumentNumberService{
		repo:   repo,
		now:    time.Now,
		logger: logger,
	}
}

// WithNow overrides the clock, used by tests to pin the date component
func (s *DocumentNumberService) WithNow(now func() time.Time) *DocumentNumberService {
	s.now = now
	return s
}

// NextNumber allocates the next quotation number. The underlying counter
// increment is atomic, so two concurrent calls never return the same number.
func (s *DocumentNumberService) NextNumber(ctx context.Context) (string, error) {
	day := s.now().UTC().Format("20060102")

	seq, err := s.repo.NextForDay(ctx, day)
	if err != nil {
		s.logger.Error("failed to get next sequence",
			zap.String("day", day),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate quotation number: %w", err)
	}

	number := fmt.Sprintf("%s%s%03d", domain.DocumentNumberPrefix, day, seq)

	s.logger.Info("generated quotation number",
		zap.String("number", number),
		zap.String("day", day),
		zap.Int("sequence", seq))

	return number, nil
}

// CurrentSequence returns the last used sequence for a day without
// incrementing it. Returns 0 if nothing was allocated that day.
func (s *DocumentNumberService) CurrentSequence(ctx context.Context, day string) (int, error) {
	return s.repo.CurrentForDay(ctx, day)
}

// InitializeSequence sets the counter for a day, used when importing
// quotations that already carry numbers. The value only moves forward.
func (s *DocumentNumberService) InitializeSequence(ctx context.Context, day string, value int) error {
	return s.repo.SetForDay(ctx, day, value)
}

// ValidateNumber checks a quotation number against the canonical format
func (s *DocumentNumberService) ValidateNumber(number string) bool {
	return domain.IsValidDocumentNumber(number)
}
