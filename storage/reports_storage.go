package storage

import (
	"math"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// Sizes of the submission overviews
const (
	summaryLatestSubmissions = 5
	recentSubmissions        = 20
)

// ReportsStorage computes aggregated figures over submissions.
type ReportsStorage struct {
	db *gorm.DB
}

// ReportsStorage returns a ReportsStorage
func (s *Storage) ReportsStorage() *ReportsStorage {
	return &ReportsStorage{db: s.db}
}

// DepartmentMetrics returns for every department the average overall rating
// received (rounded to two decimals), the number of submissions received and
// the number of remarks not yet responded to.
func (s *ReportsStorage) DepartmentMetrics() ([]model.DepartmentMetrics, error) {
	var departments []model.Department
	if err := s.db.Order("name").Find(&departments).Error; err != nil {
		return nil, errors.Wrap(err, "reports: loading departments failed")
	}

	var received []struct {
		RatedDepartmentID uint
		Average           float64
		Total             int64
	}
	if err := s.db.Model(&model.SurveySubmission{}).
		Select("rated_department_id, AVG(overall_rating) AS average, COUNT(*) AS total").
		Group("rated_department_id").
		Scan(&received).Error; err != nil {
		return nil, errors.Wrap(err, "reports: aggregating ratings failed")
	}

	var unresponded []struct {
		RatedDepartmentID uint
		Count             int64
	}
	if err := s.db.Table("survey_answers AS a").
		Select("s.rated_department_id, COUNT(*) AS count").
		Joins("JOIN survey_submissions AS s ON s.id = a.submission_id").
		Joins("LEFT JOIN remark_responses AS r ON r.submission_id = a.submission_id AND r.question_id = a.question_id").
		Where("a.remarks <> '' AND r.id IS NULL").
		Group("s.rated_department_id").
		Scan(&unresponded).Error; err != nil {
		return nil, errors.Wrap(err, "reports: counting unresponded remarks failed")
	}

	metrics := make([]model.DepartmentMetrics, len(departments))
	index := make(map[uint]int, len(departments))
	for i, d := range departments {
		metrics[i] = model.DepartmentMetrics{
			DepartmentID:   d.ID,
			DepartmentName: d.Name,
		}
		index[d.ID] = i
	}
	for _, r := range received {
		if i, ok := index[r.RatedDepartmentID]; ok {
			metrics[i].AverageRatingReceived = math.Round(r.Average*100) / 100
			metrics[i].TotalSurveysReceived = r.Total
		}
	}
	for _, u := range unresponded {
		if i, ok := index[u.RatedDepartmentID]; ok {
			metrics[i].UnrespondedRemarks = u.Count
		}
	}
	return metrics, nil
}

// Summary returns the number of submissions, their average overall rating
// rounded to two decimals and the latest submissions.
func (s *ReportsStorage) Summary() (*model.SubmissionSummary, error) {
	var totals struct {
		Total   int64
		Average float64
	}
	if err := s.db.Model(&model.SurveySubmission{}).
		Select("COUNT(*) AS total, COALESCE(AVG(overall_rating), 0) AS average").
		Scan(&totals).Error; err != nil {
		return nil, errors.Wrap(err, "reports: aggregating submissions failed")
	}
	latest, err := s.listings(summaryLatestSubmissions)
	if err != nil {
		return nil, err
	}
	return &model.SubmissionSummary{
		TotalSubmissions:     totals.Total,
		AverageOverallRating: math.Round(totals.Average*100) / 100,
		Latest:               latest,
	}, nil
}

// Recent returns the most recent submissions, newest first
func (s *ReportsStorage) Recent() ([]model.SubmissionListing, error) {
	return s.listings(recentSubmissions)
}

func (s *ReportsStorage) listings(limit int) ([]model.SubmissionListing, error) {
	list := make([]model.SubmissionListing, 0, limit)
	if err := s.db.Table("survey_submissions AS s").
		Select(
			"s.id, s.survey_id, s.rated_department_id, rd.name AS rated_department_name, " +
				"s.submitter_department_id, sd.name AS submitter_department_name, " +
				"s.submitter_user_id, s.overall_rating, s.submitted_at",
		).
		Joins("LEFT JOIN departments AS rd ON rd.id = s.rated_department_id").
		Joins("LEFT JOIN departments AS sd ON sd.id = s.submitter_department_id").
		Order("s.submitted_at DESC, s.id DESC").
		Limit(limit).
		Scan(&list).Error; err != nil {
		return nil, errors.Wrap(err, "reports: listing submissions failed")
	}
	return list, nil
}
