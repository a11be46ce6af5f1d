package app

import (
	"math"
	"time"

	"interview-service/internal/domain"
)

const (
	strengthThreshold = 75
	weaknessThreshold = 60
)

// FallbackReport aggregates recorded per-question scores locally, for when
// the oracle's final summary is unavailable. The overall score is the
// unweighted mean of the three axis means, rounded to the nearest integer.
// A session with no recorded answers averages to zero.
func FallbackReport(answers []domain.Answer, completedAt time.Time) domain.Report {
	axes := axisMeans(answers)
	report := domain.Report{
		Axes:        axes,
		Strengths:   []string{},
		WeakAreas:   []string{},
		CompletedAt: completedAt,
	}
	if len(answers) == 0 {
		return report
	}
	report.AverageScore = int(math.Round((axes.Correctness + axes.Depth + axes.Clarity) / 3))

	for _, axis := range []struct {
		mean     float64
		strength string
		weakness string
	}{
		{axes.Correctness, "Accurate, technically correct answers", "Review core concepts for correctness"},
		{axes.Depth, "Thorough, detailed explanations", "Could improve depth of explanations"},
		{axes.Clarity, "Clear, well-structured communication", "Work on explaining ideas more clearly"},
	} {
		switch {
		case axis.mean >= strengthThreshold:
			report.Strengths = append(report.Strengths, axis.strength)
		case axis.mean < weaknessThreshold:
			report.WeakAreas = append(report.WeakAreas, axis.weakness)
		}
	}
	return report
}

func axisMeans(answers []domain.Answer) domain.AxisMeans {
	if len(answers) == 0 {
		return domain.AxisMeans{}
	}
	var correctness, depth, clarity float64
	for _, a := range answers {
		correctness += float64(a.Scores.Correctness)
		depth += float64(a.Scores.Depth)
		clarity += float64(a.Scores.Clarity)
	}
	n := float64(len(answers))
	return domain.AxisMeans{
		Correctness: round2(correctness / n),
		Depth:       round2(depth / n),
		Clarity:     round2(clarity / n),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
