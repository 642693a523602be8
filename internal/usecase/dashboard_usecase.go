package usecase

import "context"

// Overview is the landing view of the dashboard: how many records each
// collection holds.
type Overview struct {
	Blogs   int `json:"blogs"`
	Clients int `json:"clients"`
	Team    int `json:"team"`
	Work    int `json:"work"`
	Journey int `json:"journey"`
}

// DashboardUsecase serves the dashboard landing view.
type DashboardUsecase interface {
	Overview(ctx context.Context) (*Overview, error)
}
