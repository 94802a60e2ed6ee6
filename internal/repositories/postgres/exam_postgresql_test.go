package postgres

import (
	"testing"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories"
	"github.com/stretchr/testify/assert"
)

func TestExamOrderClause(t *testing.T) {
	tests := []struct {
		name    string
		filters repositories.ExamFilters
		want    string
	}{
		{
			name:    "defaults to newest start time first",
			filters: repositories.ExamFilters{},
			want:    "start_time desc",
		},
		{
			name:    "whitelisted column and order pass through",
			filters: repositories.ExamFilters{SortBy: "title", SortOrder: "asc"},
			want:    "title asc",
		},
		{
			name:    "created_at is sortable",
			filters: repositories.ExamFilters{SortBy: "created_at", SortOrder: "desc"},
			want:    "created_at desc",
		},
		{
			name:    "unknown column falls back to start_time",
			filters: repositories.ExamFilters{SortBy: "duration_minutes", SortOrder: "asc"},
			want:    "start_time asc",
		},
		{
			name:    "sql fragments never reach the clause",
			filters: repositories.ExamFilters{SortBy: "title; DROP TABLE exams--", SortOrder: "asc"},
			want:    "start_time asc",
		},
		{
			name:    "malformed order falls back to desc",
			filters: repositories.ExamFilters{SortBy: "title", SortOrder: "sideways"},
			want:    "title desc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, examOrderClause(tt.filters))
		})
	}
}
