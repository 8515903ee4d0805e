package engine

import (
	"math"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// Summary are the administrator facing counts of a permission matrix
type Summary struct {
	Total        int `json:"total" structs:"total"`
	Allowed      int `json:"allowed" structs:"allowed"`
	Restricted   int `json:"restricted" structs:"restricted"`
	ProgressRate int `json:"progress_rate" structs:"progress_rate"`
}

// Summarize computes the counts for a matrix over n departments. Only distinct
// off-diagonal pairs count as allowed.
func Summarize(edges []model.PermissionEdge, n int) Summary {
	return SummarizeMatrix(MatrixFromEdges(edges), n)
}

// SummarizeMatrix computes the counts of an in-memory matrix
func SummarizeMatrix(m *Matrix, n int) Summary {
	s := Summary{}
	if n > 1 {
		s.Total = n * (n - 1)
	}
	s.Allowed = m.Count()
	if s.Allowed > s.Total {
		s.Allowed = s.Total
	}
	s.Restricted = s.Total - s.Allowed
	if s.Total > 0 {
		s.ProgressRate = int(math.Round(float64(s.Allowed) / float64(s.Total) * 100))
	}
	return s
}
