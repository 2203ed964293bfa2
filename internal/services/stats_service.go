package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/repository"
)

const popularSlotLimit = 5

type StatsService struct {
	bookingRepo *repository.BookingRepository
	sessionRepo *repository.SessionRepository
}

func NewStatsService(
	bookingRepo *repository.BookingRepository,
	sessionRepo *repository.SessionRepository,
) *StatsService {
	return &StatsService{bookingRepo: bookingRepo, sessionRepo: sessionRepo}
}

// CalculateEarnings sums the instructor's share over completed sessions
// scheduled in [from, to]. Deterministic; always recomputed from rows.
func (s *StatsService) CalculateEarnings(
	ctx context.Context,
	instructorID int64,
	from, to time.Time,
) (float64, error) {
	if instructorID <= 0 || from.After(to) {
		return 0, ErrInvalidInput
	}
	return s.sessionRepo.SumEarnings(ctx, instructorID, from, to)
}

func (s *StatsService) GetPopularTimeSlots(
	ctx context.Context,
	instructorID int64,
) ([]models.HourSlot, error) {
	if instructorID <= 0 {
		return nil, ErrInvalidInput
	}
	sessions, err := s.sessionRepo.List(ctx, repository.SessionListFilter{InstructorID: instructorID})
	if err != nil {
		return nil, err
	}
	return popularTimeSlots(sessions, popularSlotLimit), nil
}

func (s *StatsService) GetSessionStats(
	ctx context.Context,
	instructorID int64,
	from, to time.Time,
) (*models.SessionStats, error) {
	if instructorID <= 0 || from.After(to) {
		return nil, ErrInvalidInput
	}

	pending, err := s.bookingRepo.CountPendingForInstructor(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	earnings, err := s.sessionRepo.SumEarnings(ctx, instructorID, from, to)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.List(ctx, repository.SessionListFilter{
		InstructorID: instructorID,
		From:         from,
		To:           to,
	})
	if err != nil {
		return nil, err
	}
	averageBid, err := s.bookingRepo.AverageOfferedPrice(ctx, instructorID, from, to)
	if err != nil {
		return nil, err
	}

	completed := 0
	for _, session := range sessions {
		if session.Status == models.SessionStatusCompleted {
			completed++
		}
	}
	completionRate := 0.0
	if len(sessions) > 0 {
		completionRate = float64(completed) / float64(len(sessions))
	}

	return &models.SessionStats{
		PendingRequests:  pending,
		TotalEarnings:    earnings,
		CompletedCount:   completed,
		CompletionRate:   completionRate,
		AverageBid:       averageBid,
		PopularTimeSlots: popularTimeSlots(sessions, popularSlotLimit),
	}, nil
}

// popularTimeSlots buckets sessions by UTC hour of day. Ties are broken
// by the earlier hour so the result is stable.
func popularTimeSlots(sessions []models.LiveSession, limit int) []models.HourSlot {
	counts := make(map[int]int)
	for _, session := range sessions {
		counts[session.ScheduledStart.UTC().Hour()]++
	}

	hours := make([]int, 0, len(counts))
	for hour := range counts {
		hours = append(hours, hour)
	}
	sort.Slice(hours, func(i, j int) bool {
		if counts[hours[i]] != counts[hours[j]] {
			return counts[hours[i]] > counts[hours[j]]
		}
		return hours[i] < hours[j]
	})

	if len(hours) > limit {
		hours = hours[:limit]
	}
	slots := make([]models.HourSlot, 0, len(hours))
	for _, hour := range hours {
		slots = append(slots, models.HourSlot{
			Label: fmt.Sprintf("%d:00-%d:00", hour, hour+1),
			Count: counts[hour],
		})
	}
	return slots
}
