package core

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Form inputs carry what an admin submits for create and update. They are
// validated locally, then sent to the API as JSON.

// ProductInput is the create/update body of a product.
type ProductInput struct {
	Name        string          `json:"name" form:"name" validate:"required,max=120"`
	SKU         string          `json:"sku,omitempty" form:"sku" validate:"omitempty,max=40"`
	Brand       string          `json:"brand" form:"brand" validate:"required"`
	Category    string          `json:"category" form:"category" validate:"required,oneof=panel inverter battery mounting cable accessory"`
	Description string          `json:"description,omitempty" form:"description" validate:"max=4000"`
	Price       decimal.Decimal `json:"price" form:"price" validate:"gt=0"`
	Stock       int             `json:"stock" form:"stock" validate:"gte=0"`
	WattPeak    int             `json:"wattPeak,omitempty" form:"wattPeak" validate:"gte=0,lte=100000"`
	Image       string          `json:"image,omitempty" form:"image" validate:"omitempty,http_url"`
	Datasheet   string          `json:"datasheet,omitempty" form:"datasheet" validate:"omitempty,http_url"`
	Active      bool            `json:"isActive" form:"isActive"`
}

// ProductCategories are the values accepted by ProductInput.Category.
var ProductCategories = []string{"panel", "inverter", "battery", "mounting", "cable", "accessory"}

// OrderInput updates the fulfilment state of an order. Orders are created by
// customers, so this is update-only.
type OrderInput struct {
	Status        string `json:"status" form:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled"`
	PaymentStatus string `json:"paymentStatus,omitempty" form:"paymentStatus" validate:"omitempty,oneof=unpaid paid refunded"`
	Salesperson   string `json:"salesperson,omitempty" form:"salesperson"`
}

// BrandInput is the create/update body of a brand.
type BrandInput struct {
	Name        string `json:"name" form:"name" validate:"required,max=80"`
	Logo        string `json:"logo,omitempty" form:"logo" validate:"omitempty,http_url"`
	Website     string `json:"website,omitempty" form:"website" validate:"omitempty,http_url"`
	Description string `json:"description,omitempty" form:"description" validate:"max=2000"`
}

// SubAdminInput is the create/update body of a sub-admin. Password is only
// required on create.
type SubAdminInput struct {
	Name        string   `json:"name" form:"name" validate:"required,max=80"`
	Email       string   `json:"email" form:"email" validate:"required,email"`
	Phone       string   `json:"phone,omitempty" form:"phone" validate:"omitempty,e164"`
	Password    string   `json:"password,omitempty" form:"password" validate:"omitempty,min=8,max=72"`
	Permissions []string `json:"permissions" form:"permissions" validate:"dive,oneof=orders products brands coupons salespersons knowledge commissions"`
	Active      bool     `json:"isActive" form:"isActive"`
}

// SubAdminPermissions are the screens a sub-admin can be granted.
var SubAdminPermissions = []string{"orders", "products", "brands", "coupons", "salespersons", "knowledge", "commissions"}

// SalespersonInput is the create/update body of a salesperson.
type SalespersonInput struct {
	Name           string          `json:"name" form:"name" validate:"required,max=80"`
	Email          string          `json:"email" form:"email" validate:"required,email"`
	Phone          string          `json:"phone,omitempty" form:"phone" validate:"omitempty,e164"`
	Region         string          `json:"region,omitempty" form:"region" validate:"max=80"`
	Role           string          `json:"role" form:"role" validate:"required,max=40"`
	CommissionRate decimal.Decimal `json:"commissionRate" form:"commissionRate" validate:"gte=0,lte=100"`
	Active         bool            `json:"isActive" form:"isActive"`
}

// CouponInput is the create/update body of a coupon.
type CouponInput struct {
	Code          string          `json:"code" form:"code" validate:"required,alphanum,min=3,max=20"`
	DiscountType  string          `json:"discountType" form:"discountType" validate:"required,oneof=percentage flat"`
	DiscountValue decimal.Decimal `json:"discountValue" form:"discountValue" validate:"gt=0"`
	MinOrder      decimal.Decimal `json:"minOrderAmount" form:"minOrderAmount" validate:"gte=0"`
	UsageLimit    int             `json:"usageLimit,omitempty" form:"usageLimit" validate:"gte=0"`
	ExpiresAt     time.Time       `json:"expiryDate" form:"expiryDate" validate:"required"`
	Active        bool            `json:"isActive" form:"isActive"`
}

// KnowledgeInput is the create/update body of a knowledge-center entry.
type KnowledgeInput struct {
	Title       string `json:"title" form:"title" validate:"required,max=160"`
	Category    string `json:"category,omitempty" form:"category" validate:"max=60"`
	ContentType string `json:"contentType" form:"contentType" validate:"required,oneof=article video pdf"`
	Body        string `json:"content,omitempty" form:"content" validate:"required_if=ContentType article"`
	FileURL     string `json:"fileUrl,omitempty" form:"fileUrl" validate:"omitempty,http_url"`
	Thumbnail   string `json:"thumbnail,omitempty" form:"thumbnail" validate:"omitempty,http_url"`
	Published   bool   `json:"isPublished" form:"isPublished"`
}

// RoleCommissionInput is the create/update body of a role commission.
type RoleCommissionInput struct {
	Role        string          `json:"role" form:"role" validate:"required,max=40"`
	Percentage  decimal.Decimal `json:"percentage" form:"percentage" validate:"gte=0,lte=100"`
	Description string          `json:"description,omitempty" form:"description" validate:"max=500"`
}

// ----------------------------------------------------------------------------
// Form decoding
// ----------------------------------------------------------------------------

// formReader reads typed values from submitted form values and collects
// parse failures; rule failures are left to Validate.
type formReader struct {
	v    url.Values
	errs FieldErrors
}

func newFormReader(v url.Values) *formReader {
	return &formReader{v: v, errs: FieldErrors{}}
}

func (r *formReader) str(key string) string { return strings.TrimSpace(r.v.Get(key)) }

func (r *formReader) boolean(key string) bool {
	switch strings.ToLower(r.str(key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func (r *formReader) integer(key string) int {
	s := r.str(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		r.errs.Add(key, "must be a whole number")
	}
	return n
}

func (r *formReader) dec(key string) decimal.Decimal {
	s := strings.ReplaceAll(r.str(key), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		r.errs.Add(key, "must be a number")
	}
	return d
}

func (r *formReader) date(key string) time.Time {
	s := r.str(key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		r.errs.Add(key, "must be a date (YYYY-MM-DD)")
	}
	return t
}

func (r *formReader) list(key string) []string {
	var out []string
	for _, s := range r.v[key] {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// finish merges parse errors with rule failures of input.
func (r *formReader) finish(input any) FieldErrors {
	for k, msg := range Validate(input) {
		r.errs.Add(k, msg)
	}
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs
}

// ParseProductForm decodes and validates a product form.
func ParseProductForm(v url.Values) (ProductInput, FieldErrors) {
	r := newFormReader(v)
	in := ProductInput{
		Name:        r.str("name"),
		SKU:         r.str("sku"),
		Brand:       r.str("brand"),
		Category:    r.str("category"),
		Description: r.str("description"),
		Price:       r.dec("price"),
		Stock:       r.integer("stock"),
		WattPeak:    r.integer("wattPeak"),
		Image:       r.str("image"),
		Datasheet:   r.str("datasheet"),
		Active:      r.boolean("isActive"),
	}
	return in, r.finish(in)
}

// ParseOrderForm decodes and validates an order status form.
func ParseOrderForm(v url.Values) (OrderInput, FieldErrors) {
	r := newFormReader(v)
	in := OrderInput{
		Status:        r.str("status"),
		PaymentStatus: r.str("paymentStatus"),
		Salesperson:   r.str("salesperson"),
	}
	return in, r.finish(in)
}

// ParseBrandForm decodes and validates a brand form.
func ParseBrandForm(v url.Values) (BrandInput, FieldErrors) {
	r := newFormReader(v)
	in := BrandInput{
		Name:        r.str("name"),
		Logo:        r.str("logo"),
		Website:     r.str("website"),
		Description: r.str("description"),
	}
	return in, r.finish(in)
}

// ParseSubAdminForm decodes and validates a sub-admin form. creating makes
// the password mandatory.
func ParseSubAdminForm(v url.Values, creating bool) (SubAdminInput, FieldErrors) {
	r := newFormReader(v)
	in := SubAdminInput{
		Name:        r.str("name"),
		Email:       r.str("email"),
		Phone:       r.str("phone"),
		Password:    r.v.Get("password"),
		Permissions: r.list("permissions"),
		Active:      r.boolean("isActive"),
	}
	if creating && in.Password == "" {
		r.errs.Add("password", "is required")
	}
	return in, r.finish(in)
}

// ParseSalespersonForm decodes and validates a salesperson form.
func ParseSalespersonForm(v url.Values) (SalespersonInput, FieldErrors) {
	r := newFormReader(v)
	in := SalespersonInput{
		Name:           r.str("name"),
		Email:          r.str("email"),
		Phone:          r.str("phone"),
		Region:         r.str("region"),
		Role:           r.str("role"),
		CommissionRate: r.dec("commissionRate"),
		Active:         r.boolean("isActive"),
	}
	return in, r.finish(in)
}

// ParseCouponForm decodes and validates a coupon form. Codes are upper-cased.
func ParseCouponForm(v url.Values) (CouponInput, FieldErrors) {
	r := newFormReader(v)
	in := CouponInput{
		Code:          strings.ToUpper(r.str("code")),
		DiscountType:  r.str("discountType"),
		DiscountValue: r.dec("discountValue"),
		MinOrder:      r.dec("minOrderAmount"),
		UsageLimit:    r.integer("usageLimit"),
		ExpiresAt:     r.date("expiryDate"),
		Active:        r.boolean("isActive"),
	}
	if in.DiscountType == DiscountPercent && in.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		r.errs.Add("discountValue", "must be 100 or less for a percentage discount")
	}
	return in, r.finish(in)
}

// ParseKnowledgeForm decodes and validates a knowledge-center form.
func ParseKnowledgeForm(v url.Values) (KnowledgeInput, FieldErrors) {
	r := newFormReader(v)
	in := KnowledgeInput{
		Title:       r.str("title"),
		Category:    r.str("category"),
		ContentType: r.str("contentType"),
		Body:        r.str("content"),
		FileURL:     r.str("fileUrl"),
		Thumbnail:   r.str("thumbnail"),
		Published:   r.boolean("isPublished"),
	}
	if in.ContentType != "" && in.ContentType != ContentArticle && in.FileURL == "" {
		r.errs.Add("fileUrl", "is required for "+in.ContentType+" content")
	}
	return in, r.finish(in)
}

// ParseRoleCommissionForm decodes and validates a role commission form.
func ParseRoleCommissionForm(v url.Values) (RoleCommissionInput, FieldErrors) {
	r := newFormReader(v)
	in := RoleCommissionInput{
		Role:        r.str("role"),
		Percentage:  r.dec("percentage"),
		Description: r.str("description"),
	}
	return in, r.finish(in)
}
