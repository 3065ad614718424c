package service

import (
	"context"

	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/quiz"
	"github.com/stemsi/nurseprep-backend/internal/repository"
)

const dashboardRecentLimit = 5

// DashboardData consolidates all metrics for the admin dashboard.
type DashboardData struct {
	*repository.SummaryCounts
	ExamStatusCounts   map[model.ExamStatus]int         `json:"exam_status_counts"`
	QuestionTypeCounts map[quiz.Type]int                `json:"question_type_counts"`
	RecentExamResults  []repository.DashboardExamResult `json:"recent_exam_results"`
}

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo *repository.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// GetDashboardData gathers every dashboard metric.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	summary, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.repo.GetExamStatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	typeCounts, err := s.repo.GetQuestionTypeCounts(ctx)
	if err != nil {
		return nil, err
	}
	fillQuestionTypes(typeCounts)

	recent, err := s.repo.GetRecentExamResults(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}

	return &DashboardData{
		SummaryCounts:      summary,
		ExamStatusCounts:   statusCounts,
		QuestionTypeCounts: typeCounts,
		RecentExamResults:  recent,
	}, nil
}

// fillQuestionTypes adds a zero entry for every item format without questions.
func fillQuestionTypes(counts map[quiz.Type]int) {
	for _, t := range quiz.Types {
		if _, ok := counts[t]; !ok {
			counts[t] = 0
		}
	}
}
