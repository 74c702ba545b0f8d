package srs

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
)

// defaultState synthesizes the progress of a word that has never been reviewed.
func defaultState(userID, wordID uuid.UUID, now time.Time, params *Params) *domain.WordProgress {
	return &domain.WordProgress{
		UserID:         userID,
		WordID:         wordID,
		NextReviewDate: now,
		IntervalDays:   0,
		EaseFactor:     params.InitialEaseFactor,
		Repetitions:    0,
		CreatedAt:      now,
	}
}

// calculateNewEaseFactor applies the outcome adjustment to the ease factor.
//
// Incorrect answers subtract the penalty and are floored at MinEaseFactor.
// Correct answers add the bonus; the ease factor is only capped when
// MaxEaseFactor is set.
func calculateNewEaseFactor(currentEF float64, result domain.ReviewResult, params *Params) float64 {
	var newEF float64
	if result == domain.ReviewResultIncorrect {
		newEF = currentEF - params.IncorrectEasePenalty
	} else {
		newEF = currentEF + params.CorrectEaseBonus
	}

	newEF = roundEase(newEF)
	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	if params.MaxEaseFactor > 0 && newEF > params.MaxEaseFactor {
		newEF = params.MaxEaseFactor
	}
	return newEF
}

// calculateNewInterval determines the interval in days after a review.
//
// Parameters:
//   - currentInterval: interval before the review
//   - repetitions: consecutive correct count after the review has been counted
//   - easeFactor: ease factor before the review's adjustment
//   - result: the review outcome
//   - params: algorithm configuration
//
// Returns:
//   - LapseInterval for an incorrect answer
//   - FirstInterval and SecondInterval for the first two consecutive correct answers
//   - round(currentInterval * easeFactor) afterwards, capped at MaxIntervalDays
func calculateNewInterval(
	currentInterval int,
	repetitions int,
	easeFactor float64,
	result domain.ReviewResult,
	params *Params,
) int {
	if result == domain.ReviewResultIncorrect {
		return params.LapseInterval
	}

	switch repetitions {
	case 1:
		return params.FirstInterval
	case 2:
		return params.SecondInterval
	default:
		// Compare as float before converting; the product can exceed int range.
		next := math.Round(float64(currentInterval) * easeFactor)
		if next > float64(params.MaxIntervalDays) {
			return params.MaxIntervalDays
		}
		return int(next)
	}
}

// calculateNextReviewDate converts an interval in days into the next due time.
func calculateNextReviewDate(interval int, now time.Time) time.Time {
	return now.AddDate(0, 0, interval)
}

// calculateNextState creates a new WordProgress from prev and the outcome,
// leaving prev untouched.
func calculateNextState(
	prev *domain.WordProgress,
	result domain.ReviewResult,
	now time.Time,
	params *Params,
) *domain.WordProgress {
	next := *prev

	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	next.UpdatedAt = now

	if result == domain.ReviewResultIncorrect {
		next.Repetitions = 0
		next.IncorrectCount++
	} else {
		next.Repetitions++
		next.CorrectCount++
	}

	next.IntervalDays = calculateNewInterval(prev.IntervalDays, next.Repetitions, prev.EaseFactor, result, params)
	next.EaseFactor = calculateNewEaseFactor(prev.EaseFactor, result, params)
	next.NextReviewDate = calculateNextReviewDate(next.IntervalDays, now)

	return &next
}

// roundEase trims floating point noise so that repeated additions of 0.1
// stay on two decimal places.
func roundEase(ef float64) float64 {
	return math.Round(ef*100) / 100
}
