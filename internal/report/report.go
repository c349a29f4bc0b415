// Package report computes the results view for a finished interview and
// saves the downloadable PDF report.
package report

import (
	"context"
	"math"
	"os"
	"path/filepath"

	"github.com/Rahul-150705/interviewflow-pro/internal/models"
)

// performance bands shown on the results view
const (
	BandExcellent = "Excellent"
	BandGood      = "Good Work"
	BandPoor      = "Needs Improvement"
)

// Summary is the aggregate score view over one finalized bundle.
type Summary struct {
	Overall   int
	Band      string
	Total     int // questions asked
	Graded    int // questions with feedback
	Excellent int // scores >= 80
	Good      int // scores 60-79
	Poor      int // scores < 60
}

// Summarize aggregates the collected feedback. With nothing graded the
// overall score is zero and the lowest band applies.
func Summarize(bundle models.Bundle) Summary {
	summary := Summary{
		Total:  len(bundle.Questions),
		Graded: len(bundle.Feedbacks),
	}

	if summary.Graded == 0 {
		summary.Band = BandPoor
		return summary
	}

	sum := 0
	for _, fb := range bundle.Feedbacks {
		sum += fb.Score
		switch {
		case fb.Score >= 80:
			summary.Excellent++
		case fb.Score >= 60:
			summary.Good++
		default:
			summary.Poor++
		}
	}

	summary.Overall = int(math.Round(float64(sum) / float64(summary.Graded)))
	summary.Band = bandFor(summary.Overall)
	return summary
}

func bandFor(score int) string {
	switch {
	case score >= 80:
		return BandExcellent
	case score >= 60:
		return BandGood
	default:
		return BandPoor
	}
}

// Downloader is the report retrieval boundary; *gateway.Client
// satisfies it.
type Downloader interface {
	DownloadReport(ctx context.Context, interviewID string) (string, []byte, error)
}

// Save fetches the PDF report for one interview and writes it into dir
// under the backend-supplied filename, returning the full path.
func Save(ctx context.Context, dl Downloader, interviewID, dir string) (string, error) {
	filename, data, err := dl.DownloadReport(ctx, interviewID)
	if err != nil {
		return "", err
	}

	// the filename comes from a response header; keep only its base
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
