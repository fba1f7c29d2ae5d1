package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DBTX is the interface for database operations.
// Satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// ----------------------------------------------------------------------------
// Entity records as returned by the admin API
// ----------------------------------------------------------------------------

// Product is a sellable item of solar equipment.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	WattPeak    int             `json:"wattPeak,omitempty"`
	Image       string          `json:"image,omitempty"`
	Datasheet   string          `json:"datasheet,omitempty"`
	Active      bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Order statuses.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// OrderStatuses lists the statuses in workflow order.
var OrderStatuses = []string{OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled}

// Order is a customer order placed through the storefront or a salesperson.
type Order struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"orderNumber"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Salesperson   string          `json:"salesperson,omitempty"`
	ItemCount     int             `json:"itemCount"`
	Total         decimal.Decimal `json:"totalAmount"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus,omitempty"`
	CouponCode    string          `json:"couponCode,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Brand is a manufacturer whose products are listed.
type Brand struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Logo        string    `json:"logo,omitempty"`
	Website     string    `json:"website,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SubAdmin is a restricted administrator.
type SubAdmin struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	Active      bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Salesperson is a field seller earning commission on orders.
type Salesperson struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone,omitempty"`
	Region         string          `json:"region,omitempty"`
	Role           string          `json:"role,omitempty"`
	CommissionRate decimal.Decimal `json:"commissionRate"`
	TotalSales     decimal.Decimal `json:"totalSales"`
	Active         bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Discount types of a coupon.
const (
	DiscountPercent = "percentage"
	DiscountFlat    = "flat"
)

// Coupon is a discount code.
type Coupon struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	DiscountType  string          `json:"discountType"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	MinOrder      decimal.Decimal `json:"minOrderAmount"`
	UsageLimit    int             `json:"usageLimit,omitempty"`
	UsedCount     int             `json:"usedCount"`
	ExpiresAt     time.Time       `json:"expiryDate"`
	Active        bool            `json:"isActive"`
}

// Expired reports whether the coupon is past its expiry at t.
func (c Coupon) Expired(t time.Time) bool {
	return !c.ExpiresAt.IsZero() && t.After(c.ExpiresAt)
}

// Knowledge-center content types.
const (
	ContentArticle = "article"
	ContentVideo   = "video"
	ContentPDF     = "pdf"
)

// KnowledgeCenterEntry is a piece of training or support content.
type KnowledgeCenterEntry struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category,omitempty"`
	ContentType string    `json:"contentType"`
	Body        string    `json:"content,omitempty"`
	FileURL     string    `json:"fileUrl,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Published   bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RoleCommission is the commission percentage paid to a sales role.
type RoleCommission struct {
	ID          string          `json:"id"`
	Role        string          `json:"role"`
	Percentage  decimal.Decimal `json:"percentage"`
	Description string          `json:"description,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
