package web

import (
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/solaradmin/internal/core"
	"github.com/JonMunkholm/solaradmin/internal/table"
	"github.com/JonMunkholm/solaradmin/internal/web/templates"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"120.5", "120.50"},
		{"1234", "1,234.00"},
		{"1234567.891", "1,234,567.89"},
		{"-9876.5", "-9,876.50"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMoney(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestCouponStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		c    core.Coupon
		want string
	}{
		{"live", core.Coupon{Active: true, ExpiresAt: now.AddDate(0, 1, 0)}, "Active"},
		{"no expiry", core.Coupon{Active: true}, "Active"},
		{"expired wins over inactive", core.Coupon{ExpiresAt: now.AddDate(0, 0, -1)}, "Expired"},
		{"switched off", core.Coupon{ExpiresAt: now.AddDate(0, 1, 0)}, "Inactive"},
		{"used up", core.Coupon{Active: true, UsageLimit: 5, UsedCount: 5}, "Used up"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, couponStatus(tt.c, now))
		})
	}
}

func TestFormatDiscountAndUsage(t *testing.T) {
	pct := core.Coupon{DiscountType: core.DiscountPercent, DiscountValue: decimal.NewFromInt(15), UsedCount: 3}
	flat := core.Coupon{DiscountType: core.DiscountFlat, DiscountValue: decimal.NewFromInt(2500), UsedCount: 1, UsageLimit: 10}

	assert.Equal(t, "15%", formatDiscount(pct))
	assert.Equal(t, "2,500.00", formatDiscount(flat))
	assert.Equal(t, "3 / ∞", formatUsage(pct))
	assert.Equal(t, "1 / 10", formatUsage(flat))
}

func TestRefill(t *testing.T) {
	fields := subAdminFields(nil)
	v := url.Values{
		"name":        {"Ravi"},
		"password":    {"hunter22"},
		"permissions": {"orders", "products"},
	}

	got := refill(fields, v)
	require.Len(t, got, len(fields))

	byName := map[string]templates.Field{}
	for _, f := range got {
		byName[f.Name] = f
	}
	assert.Equal(t, "Ravi", byName["name"].Value)
	assert.Empty(t, byName["password"].Value)
	assert.Equal(t, []string{"orders", "products"}, byName["permissions"].Values)
	assert.Empty(t, byName["isActive"].Value, "unchecked box posts nothing")
	assert.Equal(t, "true", fields[len(fields)-1].Value, "original fields untouched")
}

func TestUploadField(t *testing.T) {
	fields := productFields(nil)

	f, ok := uploadField(fields, "product-image", "")
	require.True(t, ok)
	assert.Equal(t, "image", f.Name)

	_, ok = uploadField(fields, "product-image", "datasheet")
	assert.False(t, ok)

	_, ok = uploadField(fields, "brand-logo", "")
	assert.False(t, ok)
}

func columnKeys[T any](cols []table.Column[T]) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Key
	}
	return out
}

func TestColumnSchemas(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		screen string
		keys   []string
	}{
		{"products", columnKeys(productColumns(rowActions[core.Product]{}))},
		{"brands", columnKeys(brandColumns(rowActions[core.Brand]{}))},
		{"orders", columnKeys(orderColumns(rowActions[core.Order]{}))},
		{"coupons", columnKeys(couponColumns(now)(rowActions[core.Coupon]{}))},
		{"salespersons", columnKeys(salespersonColumns(rowActions[core.Salesperson]{}))},
		{"commissions", columnKeys(commissionColumns(rowActions[core.RoleCommission]{}))},
		{"subadmins", columnKeys(subAdminColumns(rowActions[core.SubAdmin]{}))},
		{"knowledge", columnKeys(knowledgeColumns(rowActions[core.KnowledgeCenterEntry]{}))},
	}
	for _, tt := range tests {
		t.Run(tt.screen, func(t *testing.T) {
			scr, ok := core.Get(tt.screen)
			require.True(t, ok)
			if scr.SearchKey != "" {
				assert.Contains(t, tt.keys, scr.SearchKey)
			}
			assert.Equal(t, "actions", tt.keys[len(tt.keys)-1])
		})
	}

	assert.NotContains(t, columnKeys(auditColumns(rowActions[core.AuditEntry]{})), "actions")
}
