package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Read models (DTO for read side)

type ProductView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	InStock     bool            `json:"in_stock"`
	Inventory   int32           `json:"inventory"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type UserProfileView struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Credits         int64      `json:"credits"`
	PendingCredits  int64      `json:"pending_credits"`
	RedemptionCount int64      `json:"redemption_count"`
	IsActive        bool       `json:"is_active"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type RedemptionView struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	ProductID        string          `json:"product_id"`
	CreditsUsed      int64           `json:"credits_used"`
	CashAmount       decimal.Decimal `json:"cash_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaymentReference string          `json:"payment_reference"`
	Status           string          `json:"status"`
	Street           string          `json:"street"`
	City             string          `json:"city"`
	State            string          `json:"state"`
	ZipCode          string          `json:"zip_code"`
	Country          string          `json:"country"`
	TrackingNumber   *string         `json:"tracking_number,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type LaneView struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	ImpactScore      int32     `json:"impact_score"`
	State            string    `json:"state"`
	Views            int64     `json:"views"`
	Completions      int64     `json:"completions"`
	Engagement       int64     `json:"engagement"`
	Description      string    `json:"description"`
	Difficulty       string    `json:"difficulty"`
	EstimatedMinutes int32     `json:"estimated_minutes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type MetricsPoint struct {
	Date        string `json:"date"`
	Bursts      int64  `json:"bursts"`
	Wins        int64  `json:"wins"`
	Purchases   int64  `json:"purchases"`
	Redemptions int64  `json:"redemptions"`
	Referrals   int64  `json:"referrals"`
}

type MetricsView struct {
	Bursts      int64          `json:"bursts"`
	Wins        int64          `json:"wins"`
	Purchases   int64          `json:"purchases"`
	Referrals   int64          `json:"referrals"`
	Redemptions int64          `json:"redemptions"`
	ChartData   []MetricsPoint `json:"chart_data"`
}

type DashboardView struct {
	TotalProducts    int64             `json:"total_products"`
	TotalUsers       int64             `json:"total_users"`
	ActiveUsers      int64             `json:"active_users"`
	TotalRedemptions int64             `json:"total_redemptions"`
	RecentProducts   []ProductView     `json:"recent_products"`
	RecentUsers      []UserProfileView `json:"recent_users"`
}

// Read store ports implemented by internal/infra/repository.

type UserReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*UserProfileView, error)
	List(ctx context.Context) ([]*UserProfileView, error)
	CountAll(ctx context.Context) (int64, error)
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)
	SumStats(ctx context.Context, since *time.Time) (MetricsView, error)
}

type RedemptionReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RedemptionView, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*RedemptionView, error)
	CountSince(ctx context.Context, since *time.Time) (int64, error)
	CountByDay(ctx context.Context, from, to time.Time) (map[string]int64, error)
}

type ProductReadStore interface {
	FindAll(ctx context.Context) ([]*ProductView, error)
	FindRecent(ctx context.Context, limit int32) ([]*ProductView, error)
	CountAll(ctx context.Context) (int64, error)
}

type LaneReadStore interface {
	FindByState(ctx context.Context, state *string) ([]*LaneView, error)
}
