package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"merch-api/internal/usecase/queries"
)

type UserResponse struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Credits         int64      `json:"credits"`
	PendingCredits  int64      `json:"pendingCredits"`
	RedemptionCount int64      `json:"redemptionCount"`
	IsActive        bool       `json:"isActive"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func FromUserProfileView(v *queries.UserProfileView) (*UserResponse, error) {
	var resp UserResponse
	if err := copier.Copy(&resp, v); err != nil {
		return nil, err
	}
	return &resp, nil
}

type LaneResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	ImpactScore      int32     `json:"impactScore"`
	State            string    `json:"state"`
	Views            int64     `json:"views"`
	Completions      int64     `json:"completions"`
	Engagement       int64     `json:"engagement"`
	Description      string    `json:"description"`
	Difficulty       string    `json:"difficulty"`
	EstimatedMinutes int32     `json:"estimatedMinutes"`
}

func FromLaneView(v *queries.LaneView) (*LaneResponse, error) {
	var resp LaneResponse
	if err := copier.Copy(&resp, v); err != nil {
		return nil, err
	}
	return &resp, nil
}

type MetricsResponse struct {
	Bursts      int64                  `json:"bursts"`
	Wins        int64                  `json:"wins"`
	Purchases   int64                  `json:"purchases"`
	Referrals   int64                  `json:"referrals"`
	Redemptions int64                  `json:"redemptions"`
	ChartData   []queries.MetricsPoint `json:"chartData"`
}

func FromMetricsView(v *queries.MetricsView) *MetricsResponse {
	return &MetricsResponse{
		Bursts:      v.Bursts,
		Wins:        v.Wins,
		Purchases:   v.Purchases,
		Referrals:   v.Referrals,
		Redemptions: v.Redemptions,
		ChartData:   v.ChartData,
	}
}

type DashboardResponse struct {
	TotalProducts    int64             `json:"totalProducts"`
	TotalUsers       int64             `json:"totalUsers"`
	ActiveUsers      int64             `json:"activeUsers"`
	TotalRedemptions int64             `json:"totalRedemptions"`
	RecentProducts   []ProductResponse `json:"recentProducts"`
	RecentUsers      []UserResponse    `json:"recentUsers"`
}

func FromDashboardView(v *queries.DashboardView) (*DashboardResponse, error) {
	resp := &DashboardResponse{
		TotalProducts:    v.TotalProducts,
		TotalUsers:       v.TotalUsers,
		ActiveUsers:      v.ActiveUsers,
		TotalRedemptions: v.TotalRedemptions,
	}
	for i := range v.RecentProducts {
		resp.RecentProducts = append(resp.RecentProducts, *FromProductView(&v.RecentProducts[i]))
	}
	for i := range v.RecentUsers {
		u, err := FromUserProfileView(&v.RecentUsers[i])
		if err != nil {
			return nil, err
		}
		resp.RecentUsers = append(resp.RecentUsers, *u)
	}
	return resp, nil
}
