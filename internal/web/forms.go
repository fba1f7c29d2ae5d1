package web

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/solaradmin/internal/core"
	"github.com/JonMunkholm/solaradmin/internal/web/templates"
)

// Field builders return the controls of an entity form, prefilled from rec
// when editing. rec is nil on create.

func productFields(rec *core.Product) []templates.Field {
	p := core.Product{Active: true}
	if rec != nil {
		p = *rec
	}
	return []templates.Field{
		{Name: "name", Label: "Name", Value: p.Name, Required: true},
		{Name: "sku", Label: "SKU", Value: p.SKU},
		{Name: "brand", Label: "Brand", Value: p.Brand, Required: true},
		{Name: "category", Label: "Category", Kind: templates.FieldSelect, Options: core.ProductCategories, Value: p.Category, Required: true},
		{Name: "price", Label: "Price", Kind: templates.FieldNumber, Step: "0.01", Value: decimalValue(p.Price, rec), Required: true},
		{Name: "stock", Label: "Stock", Kind: templates.FieldNumber, Step: "1", Value: intValue(p.Stock, rec)},
		{Name: "wattPeak", Label: "Watt peak (Wp)", Kind: templates.FieldNumber, Step: "1", Value: intValue(p.WattPeak, rec)},
		{Name: "description", Label: "Description", Kind: templates.FieldTextarea, Value: p.Description},
		{Name: "image", Label: "Image", Kind: templates.FieldUpload, Upload: "product-image", Value: p.Image},
		{Name: "datasheet", Label: "Datasheet", Kind: templates.FieldUpload, Upload: "product-datasheet", Value: p.Datasheet},
		{Name: "isActive", Label: "Active", Kind: templates.FieldCheckbox, Value: boolValue(p.Active)},
	}
}

func orderFields(rec *core.Order) []templates.Field {
	var o core.Order
	if rec != nil {
		o = *rec
	}
	return []templates.Field{
		{Name: "status", Label: "Status", Kind: templates.FieldSelect, Options: core.OrderStatuses, Value: o.Status, Required: true},
		{Name: "paymentStatus", Label: "Payment", Kind: templates.FieldSelect, Options: []string{"unpaid", "paid", "refunded"}, Value: o.PaymentStatus},
		{Name: "salesperson", Label: "Salesperson", Value: o.Salesperson},
	}
}

func brandFields(rec *core.Brand) []templates.Field {
	var b core.Brand
	if rec != nil {
		b = *rec
	}
	return []templates.Field{
		{Name: "name", Label: "Name", Value: b.Name, Required: true},
		{Name: "website", Label: "Website", Kind: templates.FieldURL, Value: b.Website},
		{Name: "logo", Label: "Logo", Kind: templates.FieldUpload, Upload: "brand-logo", Value: b.Logo},
		{Name: "description", Label: "Description", Kind: templates.FieldTextarea, Value: b.Description},
	}
}

func subAdminFields(rec *core.SubAdmin) []templates.Field {
	s := core.SubAdmin{Active: true}
	help := "At least 8 characters."
	if rec != nil {
		s = *rec
		help = "Leave blank to keep the current password."
	}
	return []templates.Field{
		{Name: "name", Label: "Name", Value: s.Name, Required: true},
		{Name: "email", Label: "Email", Kind: templates.FieldEmail, Value: s.Email, Required: true},
		{Name: "phone", Label: "Phone", Value: s.Phone, Help: "International format, e.g. +919876543210."},
		{Name: "password", Label: "Password", Kind: templates.FieldPassword, Required: rec == nil, Help: help},
		{Name: "permissions", Label: "Permissions", Kind: templates.FieldMulti, Options: core.SubAdminPermissions, Values: s.Permissions},
		{Name: "isActive", Label: "Active", Kind: templates.FieldCheckbox, Value: boolValue(s.Active)},
	}
}

func salespersonFields(rec *core.Salesperson) []templates.Field {
	s := core.Salesperson{Active: true}
	if rec != nil {
		s = *rec
	}
	return []templates.Field{
		{Name: "name", Label: "Name", Value: s.Name, Required: true},
		{Name: "email", Label: "Email", Kind: templates.FieldEmail, Value: s.Email, Required: true},
		{Name: "phone", Label: "Phone", Value: s.Phone},
		{Name: "region", Label: "Region", Value: s.Region},
		{Name: "role", Label: "Role", Value: s.Role, Required: true},
		{Name: "commissionRate", Label: "Commission (%)", Kind: templates.FieldNumber, Step: "0.01", Value: decimalValue(s.CommissionRate, rec)},
		{Name: "isActive", Label: "Active", Kind: templates.FieldCheckbox, Value: boolValue(s.Active)},
	}
}

func couponFields(rec *core.Coupon) []templates.Field {
	c := core.Coupon{Active: true, DiscountType: core.DiscountPercent}
	if rec != nil {
		c = *rec
	}
	expiry := ""
	if !c.ExpiresAt.IsZero() {
		expiry = c.ExpiresAt.Format(time.DateOnly)
	}
	return []templates.Field{
		{Name: "code", Label: "Code", Value: c.Code, Required: true, Help: "Letters and digits, stored in upper case."},
		{Name: "discountType", Label: "Discount type", Kind: templates.FieldSelect, Options: []string{core.DiscountPercent, core.DiscountFlat}, Value: c.DiscountType, Required: true},
		{Name: "discountValue", Label: "Discount", Kind: templates.FieldNumber, Step: "0.01", Value: decimalValue(c.DiscountValue, rec), Required: true},
		{Name: "minOrderAmount", Label: "Minimum order", Kind: templates.FieldNumber, Step: "0.01", Value: decimalValue(c.MinOrder, rec)},
		{Name: "usageLimit", Label: "Usage limit", Kind: templates.FieldNumber, Step: "1", Value: intValue(c.UsageLimit, rec), Help: "0 means unlimited."},
		{Name: "expiryDate", Label: "Expires", Kind: templates.FieldDate, Value: expiry, Required: true},
		{Name: "isActive", Label: "Active", Kind: templates.FieldCheckbox, Value: boolValue(c.Active)},
	}
}

func knowledgeFields(rec *core.KnowledgeCenterEntry) []templates.Field {
	k := core.KnowledgeCenterEntry{ContentType: core.ContentArticle}
	if rec != nil {
		k = *rec
	}
	return []templates.Field{
		{Name: "title", Label: "Title", Value: k.Title, Required: true},
		{Name: "category", Label: "Category", Value: k.Category},
		{Name: "contentType", Label: "Type", Kind: templates.FieldSelect, Options: []string{core.ContentArticle, core.ContentVideo, core.ContentPDF}, Value: k.ContentType, Required: true},
		{Name: "content", Label: "Article body", Kind: templates.FieldTextarea, Value: k.Body, Help: "Required for articles."},
		{Name: "fileUrl", Label: "File", Kind: templates.FieldUpload, Upload: "knowledge-file", Value: k.FileURL, Help: "Required for videos and PDFs."},
		{Name: "thumbnail", Label: "Thumbnail", Kind: templates.FieldUpload, Upload: "knowledge-thumbnail", Value: k.Thumbnail},
		{Name: "isPublished", Label: "Published", Kind: templates.FieldCheckbox, Value: boolValue(k.Published)},
	}
}

func commissionFields(rec *core.RoleCommission) []templates.Field {
	var c core.RoleCommission
	if rec != nil {
		c = *rec
	}
	return []templates.Field{
		{Name: "role", Label: "Role", Value: c.Role, Required: true},
		{Name: "percentage", Label: "Commission (%)", Kind: templates.FieldNumber, Step: "0.01", Value: decimalValue(c.Percentage, rec), Required: true},
		{Name: "description", Label: "Description", Kind: templates.FieldTextarea, Value: c.Description},
	}
}

// refill copies submitted values back into fields so a rejected form keeps
// what the admin typed. Passwords are never echoed.
func refill(fields []templates.Field, v url.Values) []templates.Field {
	out := make([]templates.Field, len(fields))
	for i, f := range fields {
		switch f.Kind {
		case templates.FieldPassword:
			f.Value = ""
		case templates.FieldMulti:
			f.Values = v[f.Name]
		case templates.FieldCheckbox:
			f.Value = boolValue(v.Get(f.Name) == "true")
		default:
			f.Value = v.Get(f.Name)
		}
		out[i] = f
	}
	return out
}

// uploadField finds the upload control backed by kind.
func uploadField(fields []templates.Field, kind, name string) (templates.Field, bool) {
	for _, f := range fields {
		if f.Kind == templates.FieldUpload && f.Upload == kind && (name == "" || f.Name == name) {
			return f, true
		}
	}
	return templates.Field{}, false
}

func boolValue(b bool) string {
	if b {
		return "true"
	}
	return ""
}

// decimalValue leaves a new form's numeric inputs blank instead of "0".
func decimalValue[T any](d decimal.Decimal, rec *T) string {
	if rec == nil && d.IsZero() {
		return ""
	}
	return d.String()
}

func intValue[T any](n int, rec *T) string {
	if rec == nil && n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// ----------------------------------------------------------------------------
// Detail views
// ----------------------------------------------------------------------------

func productDetail(p core.Product) []templates.DetailRow {
	return []templates.DetailRow{
		{Label: "Name", Value: p.Name},
		{Label: "SKU", Value: p.SKU},
		{Label: "Brand", Value: p.Brand},
		{Label: "Category", Value: p.Category},
		{Label: "Price", Value: formatMoney(p.Price)},
		{Label: "Stock", Value: strconv.Itoa(p.Stock)},
		{Label: "Watt peak", Value: wattPeak(p.WattPeak)},
		{Label: "Description", Value: p.Description},
		{Label: "Image", Value: p.Image, Link: true},
		{Label: "Datasheet", Value: p.Datasheet, Link: true},
		{Label: "Status", Value: activeLabel(p.Active)},
		{Label: "Created", Value: formatDate(p.CreatedAt)},
	}
}

func wattPeak(w int) string {
	if w == 0 {
		return ""
	}
	return strconv.Itoa(w) + " Wp"
}

func orderDetail(o core.Order) []templates.DetailRow {
	return []templates.DetailRow{
		{Label: "Order", Value: o.OrderNumber},
		{Label: "Customer", Value: o.CustomerName},
		{Label: "Email", Value: o.CustomerEmail},
		{Label: "Phone", Value: o.CustomerPhone},
		{Label: "Salesperson", Value: o.Salesperson},
		{Label: "Items", Value: strconv.Itoa(o.ItemCount)},
		{Label: "Total", Value: formatMoney(o.Total)},
		{Label: "Coupon", Value: o.CouponCode},
		{Label: "Status", Value: o.Status},
		{Label: "Payment", Value: o.PaymentStatus},
		{Label: "Placed", Value: formatDate(o.CreatedAt)},
	}
}

func brandDetail(b core.Brand) []templates.DetailRow {
	return []templates.DetailRow{
		{Label: "Name", Value: b.Name},
		{Label: "Website", Value: b.Website, Link: true},
		{Label: "Logo", Value: b.Logo, Link: true},
		{Label: "Description", Value: b.Description},
		{Label: "Added", Value: formatDate(b.CreatedAt)},
	}
}

func subAdminDetail(s core.SubAdmin) []templates.DetailRow {
	return []templates.DetailRow{
		{Label: "Name", Value: s.Name},
		{Label: "Email", Value: s.Email},
		{Label: "Phone", Value: s.Phone},
		{Label: "Permissions", Value: strings.Join(s.Permissions, ", ")},
		{Label: "Status", Value: activeLabel(s.Active)},
		{Label: "Created", Value: formatDate(s.CreatedAt)},
	}
}

func salespersonDetail(s core.Salesperson) []templates.DetailRow {
	return []templates.DetailRow{
		{Label: "Name", Value: s.Name},
		{Label: "Email", Value: s.Email},
		{Label: "Phone", Value: s.Phone},
		{Label: "Region", Value: s.Region},
		{Label: "Role", Value: s.Role},
		{Label: "Commission", Value: formatPercent(s.CommissionRate)},
		{Label: "Total sales", Value: formatMoney(s.TotalSales)},
		{Label: "Status", Value: activeLabel(s.Active)},
	}
}

func couponDetail(now func() time.Time) func(core.Coupon) []templates.DetailRow {
	return func(c core.Coupon) []templates.DetailRow {
		return []templates.DetailRow{
			{Label: "Code", Value: c.Code},
			{Label: "Discount", Value: formatDiscount(c)},
			{Label: "Minimum order", Value: formatMoney(c.MinOrder)},
			{Label: "Used", Value: formatUsage(c)},
			{Label: "Expires", Value: formatDate(c.ExpiresAt)},
			{Label: "Status", Value: couponStatus(c, now())},
		}
	}
}

func knowledgeDetail(k core.KnowledgeCenterEntry) []templates.DetailRow {
	published := "Draft"
	if k.Published {
		published = "Published"
	}
	return []templates.DetailRow{
		{Label: "Title", Value: k.Title},
		{Label: "Category", Value: k.Category},
		{Label: "Type", Value: k.ContentType},
		{Label: "Body", Value: k.Body},
		{Label: "File", Value: k.FileURL, Link: true},
		{Label: "Thumbnail", Value: k.Thumbnail, Link: true},
		{Label: "Status", Value: published},
		{Label: "Created", Value: formatDate(k.CreatedAt)},
	}
}

func commissionDetail(c core.RoleCommission) []templates.DetailRow {
	return []templates.DetailRow{
		{Label: "Role", Value: c.Role},
		{Label: "Commission", Value: formatPercent(c.Percentage)},
		{Label: "Description", Value: c.Description},
		{Label: "Updated", Value: formatDate(c.UpdatedAt)},
	}
}

func auditDetail(e core.AuditEntry) []templates.DetailRow {
	return []templates.DetailRow{
		{Label: "Time", Value: e.CreatedAt.Local().Format(time.DateTime)},
		{Label: "Action", Value: string(e.Action)},
		{Label: "Severity", Value: string(e.Severity)},
		{Label: "Entity", Value: e.Entity},
		{Label: "Record", Value: e.RecordID},
		{Label: "Admin", Value: e.AdminEmail},
		{Label: "Admin ID", Value: e.AdminID},
		{Label: "IP address", Value: e.IPAddress},
		{Label: "User agent", Value: e.UserAgent},
		{Label: "Summary", Value: e.Summary},
	}
}
