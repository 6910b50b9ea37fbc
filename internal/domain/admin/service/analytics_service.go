package service

import (
	"time"

	"shop_backend/pkg/apperr"

	"github.com/jmoiron/sqlx"
)

// RevenueBucket 按周期聚合的营收
type RevenueBucket struct {
	Period  string  `db:"period" json:"period"`
	Revenue float64 `db:"revenue" json:"revenue"`
	Orders  int64   `db:"orders" json:"orders"`
}

// TopProduct 按销量排序的商品
type TopProduct struct {
	ProductID string  `db:"product_id" json:"productId"`
	Name      string  `db:"name" json:"name"`
	Quantity  int64   `db:"quantity" json:"quantity"`
	Revenue   float64 `db:"revenue" json:"revenue"`
}

// RecentOrder 最近已支付订单
type RecentOrder struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	TotalAmount float64   `db:"total_amount" json:"totalAmount"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// RevenueReport 营收报表
type RevenueReport struct {
	Period        string          `json:"period"`
	Buckets       []RevenueBucket `json:"buckets"`
	TotalRevenue  float64         `json:"totalRevenue"`
	AvgOrderValue float64         `json:"avgOrderValue"`
	TopProducts   []TopProduct    `json:"topProducts"`
	RecentOrders  []RecentOrder   `json:"recentOrders"`
}

// DashboardStats 运营看板
type DashboardStats struct {
	TotalOrders   int64   `json:"totalOrders"`
	PendingOrders int64   `json:"pendingOrders"`
	TotalProducts int64   `json:"totalProducts"`
	TotalUsers    int64   `json:"totalUsers"`
	Revenue       float64 `json:"revenue"`
}

// AnalyticsService 管理端聚合查询，直接走 SQL，不经过 ORM
type AnalyticsService interface {
	Revenue(period string) (*RevenueReport, error)
	Dashboard() (*DashboardStats, error)
}

type analyticsService struct {
	db *sqlx.DB
}

// NewAnalyticsService 创建服务
func NewAnalyticsService(db *sqlx.DB) AnalyticsService {
	return &analyticsService{db: db}
}

// 聚合只统计已支付且未软删的订单
const paidFilter = "payment_status = 'Paid' AND deleted_at IS NULL"

func periodExpr(period string) (string, bool) {
	switch period {
	case "daily", "":
		return "to_char(created_at, 'YYYY-MM-DD')", true
	case "weekly":
		return "to_char(date_trunc('week', created_at), 'YYYY-MM-DD')", true
	case "monthly":
		return "to_char(created_at, 'YYYY-MM')", true
	}
	return "", false
}

func (s *analyticsService) Revenue(period string) (*RevenueReport, error) {
	expr, ok := periodExpr(period)
	if !ok {
		return nil, apperr.New(apperr.KindValidation, "period must be daily, weekly or monthly")
	}
	if period == "" {
		period = "daily"
	}

	report := &RevenueReport{Period: period}

	bucketQuery := `SELECT ` + expr + ` AS period,
		COALESCE(SUM(total_amount), 0) AS revenue,
		COUNT(*) AS orders
		FROM orders WHERE ` + paidFilter + `
		GROUP BY 1 ORDER BY 1 DESC LIMIT 30`
	if err := s.db.Select(&report.Buckets, bucketQuery); err != nil {
		return nil, err
	}

	totalsQuery := `SELECT COALESCE(SUM(total_amount), 0) AS total,
		COALESCE(AVG(total_amount), 0) AS avg
		FROM orders WHERE ` + paidFilter
	var totals struct {
		Total float64 `db:"total"`
		Avg   float64 `db:"avg"`
	}
	if err := s.db.Get(&totals, totalsQuery); err != nil {
		return nil, err
	}
	report.TotalRevenue = totals.Total
	report.AvgOrderValue = totals.Avg

	topQuery := `SELECT p.id AS product_id, p.name,
		SUM(oi.quantity) AS quantity,
		SUM(oi.quantity * oi.unit_price) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.payment_status = 'Paid' AND o.deleted_at IS NULL
		GROUP BY p.id, p.name
		ORDER BY quantity DESC LIMIT 5`
	if err := s.db.Select(&report.TopProducts, topQuery); err != nil {
		return nil, err
	}

	recentQuery := `SELECT id, user_id, total_amount, created_at
		FROM orders WHERE ` + paidFilter + `
		ORDER BY created_at DESC LIMIT 10`
	if err := s.db.Select(&report.RecentOrders, recentQuery); err != nil {
		return nil, err
	}

	return report, nil
}

func (s *analyticsService) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}

	counts := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM orders WHERE deleted_at IS NULL", &stats.TotalOrders},
		{"SELECT COUNT(*) FROM orders WHERE payment_status = 'Pending' AND deleted_at IS NULL", &stats.PendingOrders},
		{"SELECT COUNT(*) FROM products WHERE deleted_at IS NULL", &stats.TotalProducts},
		{"SELECT COUNT(*) FROM users WHERE deleted_at IS NULL", &stats.TotalUsers},
	}
	for _, c := range counts {
		if err := s.db.Get(c.dest, c.query); err != nil {
			return nil, err
		}
	}

	revenueQuery := "SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE " + paidFilter
	if err := s.db.Get(&stats.Revenue, revenueQuery); err != nil {
		return nil, err
	}

	return stats, nil
}
