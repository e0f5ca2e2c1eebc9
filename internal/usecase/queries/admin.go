package queries

import (
	"context"
	"time"

	"merch-api/internal/pkg/clock"
	"merch-api/internal/pkg/errs"
)

const chartDays = 30

type AdminQueries interface {
	GetMetrics(ctx context.Context, since *time.Time) (*MetricsView, error)
	GetDashboard(ctx context.Context) (*DashboardView, error)
	ListProducts(ctx context.Context) ([]*ProductView, error)
	ListLanes(ctx context.Context, state *string) ([]*LaneView, error)
	ListUsers(ctx context.Context) ([]*UserProfileView, error)
}

type adminQueriesImpl struct {
	users       UserReadStore
	redemptions RedemptionReadStore
	products    ProductReadStore
	lanes       LaneReadStore
	clock       clock.Clock
}

func NewAdminQueries(
	users UserReadStore,
	redemptions RedemptionReadStore,
	products ProductReadStore,
	lanes LaneReadStore,
	clk clock.Clock,
) AdminQueries {
	return &adminQueriesImpl{
		users:       users,
		redemptions: redemptions,
		products:    products,
		lanes:       lanes,
		clock:       clk,
	}
}

// GetMetrics sums per-user stat counters, counts redemptions, and builds a
// daily redemption chart for the trailing 30 days. The chart only carries
// series we actually record per-day; the stat counters are lifetime sums.
func (q *adminQueriesImpl) GetMetrics(ctx context.Context, since *time.Time) (*MetricsView, error) {
	metrics, err := q.users.SumStats(ctx, since)
	if err != nil {
		return nil, errs.Wrap(err, "failed to aggregate user stats")
	}

	redemptionCount, err := q.redemptions.CountSince(ctx, since)
	if err != nil {
		return nil, errs.Wrap(err, "failed to count redemptions")
	}
	metrics.Redemptions = redemptionCount

	now := q.clock.Now()
	from := now.AddDate(0, 0, -(chartDays - 1)).Truncate(24 * time.Hour)
	perDay, err := q.redemptions.CountByDay(ctx, from, now)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build redemption chart")
	}

	chart := make([]MetricsPoint, 0, chartDays)
	for i := chartDays - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		chart = append(chart, MetricsPoint{
			Date:        date,
			Redemptions: perDay[date],
		})
	}
	metrics.ChartData = chart

	return &metrics, nil
}

func (q *adminQueriesImpl) GetDashboard(ctx context.Context) (*DashboardView, error) {
	totalProducts, err := q.products.CountAll(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "failed to count products")
	}

	totalUsers, err := q.users.CountAll(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "failed to count users")
	}

	weekAgo := q.clock.Now().AddDate(0, 0, -7)
	activeUsers, err := q.users.CountActiveSince(ctx, weekAgo)
	if err != nil {
		return nil, errs.Wrap(err, "failed to count active users")
	}

	totalRedemptions, err := q.redemptions.CountSince(ctx, nil)
	if err != nil {
		return nil, errs.Wrap(err, "failed to count redemptions")
	}

	recentProducts, err := q.products.FindRecent(ctx, 5)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list recent products")
	}

	allUsers, err := q.users.List(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list users")
	}
	recentUsers := allUsers
	if len(recentUsers) > 5 {
		recentUsers = recentUsers[:5]
	}

	view := &DashboardView{
		TotalProducts:    totalProducts,
		TotalUsers:       totalUsers,
		ActiveUsers:      activeUsers,
		TotalRedemptions: totalRedemptions,
	}
	for _, p := range recentProducts {
		view.RecentProducts = append(view.RecentProducts, *p)
	}
	for _, u := range recentUsers {
		view.RecentUsers = append(view.RecentUsers, *u)
	}
	return view, nil
}

// ListProducts returns every stored product, including out-of-stock ones. The
// demo catalog is a storefront fallback and is not part of the admin view.
func (q *adminQueriesImpl) ListProducts(ctx context.Context) ([]*ProductView, error) {
	products, err := q.products.FindAll(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list products")
	}
	return products, nil
}

func (q *adminQueriesImpl) ListLanes(ctx context.Context, state *string) ([]*LaneView, error) {
	lanes, err := q.lanes.FindByState(ctx, state)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list lanes")
	}
	return lanes, nil
}

func (q *adminQueriesImpl) ListUsers(ctx context.Context) ([]*UserProfileView, error) {
	users, err := q.users.List(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list users")
	}
	return users, nil
}
