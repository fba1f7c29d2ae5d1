package web

import (
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/solaradmin/internal/core"
	"github.com/JonMunkholm/solaradmin/internal/table"
	"github.com/JonMunkholm/solaradmin/internal/web/templates"
)

// ColumnSchemaBuilder maps the row actions of a screen to the ordered
// column schema of its table. One exists per entity.
type ColumnSchemaBuilder[T any] func(actions rowActions[T]) []table.Column[T]

// rowActions are the per-row links a schema renders in its actions column.
// A nil link hides that action.
type rowActions[T any] struct {
	Edit     func(row T) string
	Delete   func(row T) string
	Singular string
}

func actionsColumn[T any](a rowActions[T]) table.Column[T] {
	return table.Column[T]{
		Key:  "actions",
		Kind: table.KindActions,
		Cell: func(row T) templ.Component {
			var edit, del string
			if a.Edit != nil {
				edit = a.Edit(row)
			}
			if a.Delete != nil {
				del = a.Delete(row)
			}
			return templates.RowActions(edit, del, strings.ToLower(a.Singular))
		},
	}
}

// textColumn is a sortable column showing a string field.
func textColumn[T any](key, header string, get func(T) string) table.Column[T] {
	return table.Column[T]{
		Key:      key,
		Header:   header,
		Sortable: true,
		Value:    func(row T) any { return get(row) },
	}
}

func moneyColumn[T any](key, header string, get func(T) decimal.Decimal) table.Column[T] {
	return table.Column[T]{
		Key:      key,
		Header:   header,
		Sortable: true,
		Value:    func(row T) any { return get(row) },
		Cell:     func(row T) templ.Component { return templates.Text(formatMoney(get(row))) },
	}
}

func dateColumn[T any](key, header string, get func(T) time.Time) table.Column[T] {
	return table.Column[T]{
		Key:      key,
		Header:   header,
		Sortable: true,
		Value:    func(row T) any { return get(row) },
		Cell:     func(row T) templ.Component { return templates.Text(formatDate(get(row))) },
	}
}

func activeColumn[T any](get func(T) bool) table.Column[T] {
	return table.Column[T]{
		Key:      "status",
		Header:   "Status",
		Sortable: true,
		Value:    func(row T) any { return activeLabel(get(row)) },
		Cell: func(row T) templ.Component {
			if get(row) {
				return templates.Badge("Active", templates.ToneGood)
			}
			return templates.Badge("Inactive", templates.ToneNeutral)
		},
	}
}

// ----------------------------------------------------------------------------
// Per-entity schemas
// ----------------------------------------------------------------------------

func productColumns(a rowActions[core.Product]) []table.Column[core.Product] {
	return []table.Column[core.Product]{
		{Key: "select", Kind: table.KindSelect},
		{
			Key:    "image",
			Header: "Image",
			Cell:   func(p core.Product) templ.Component { return templates.Thumb(p.Image, p.Name) },
		},
		textColumn("name", "Name", func(p core.Product) string { return p.Name }),
		textColumn("sku", "SKU", func(p core.Product) string { return p.SKU }),
		textColumn("brand", "Brand", func(p core.Product) string { return p.Brand }),
		{
			Key:      "category",
			Header:   "Category",
			Sortable: true,
			Value:    func(p core.Product) any { return p.Category },
			Cell: func(p core.Product) templ.Component {
				return templates.Badge(p.Category, templates.ToneNeutral)
			},
		},
		moneyColumn("price", "Price", func(p core.Product) decimal.Decimal { return p.Price }),
		{
			Key:      "stock",
			Header:   "Stock",
			Sortable: true,
			Value:    func(p core.Product) any { return p.Stock },
			Cell: func(p core.Product) templ.Component {
				if p.Stock == 0 {
					return templates.Badge("Out of stock", templates.ToneBad)
				}
				return templates.Text(strconv.Itoa(p.Stock))
			},
		},
		activeColumn(func(p core.Product) bool { return p.Active }),
		actionsColumn(a),
	}
}

func orderColumns(a rowActions[core.Order]) []table.Column[core.Order] {
	return []table.Column[core.Order]{
		{Key: "select", Kind: table.KindSelect},
		textColumn("orderNumber", "Order", func(o core.Order) string { return o.OrderNumber }),
		{
			Key:      "customer",
			Header:   "Customer",
			Sortable: true,
			Value:    func(o core.Order) any { return o.CustomerName },
			Cell: func(o core.Order) templ.Component {
				return templ.Join(templates.Text(o.CustomerName+" "), templates.Muted(o.CustomerEmail))
			},
		},
		{
			Key:      "items",
			Header:   "Items",
			Sortable: true,
			Value:    func(o core.Order) any { return o.ItemCount },
		},
		moneyColumn("total", "Total", func(o core.Order) decimal.Decimal { return o.Total }),
		{
			Key:      "status",
			Header:   "Status",
			Sortable: true,
			Value:    func(o core.Order) any { return o.Status },
			Cell:     func(o core.Order) templ.Component { return templates.Badge(o.Status, orderTone(o.Status)) },
		},
		{
			Key:      "payment",
			Header:   "Payment",
			Sortable: true,
			Value:    func(o core.Order) any { return o.PaymentStatus },
			Cell: func(o core.Order) templ.Component {
				tone := templates.ToneWarn
				switch o.PaymentStatus {
				case "paid":
					tone = templates.ToneGood
				case "refunded":
					tone = templates.ToneNeutral
				}
				return templates.Badge(o.PaymentStatus, tone)
			},
		},
		dateColumn("createdAt", "Placed", func(o core.Order) time.Time { return o.CreatedAt }),
		actionsColumn(a),
	}
}

func orderTone(status string) templates.Tone {
	switch status {
	case core.OrderDelivered:
		return templates.ToneGood
	case core.OrderCancelled:
		return templates.ToneBad
	case core.OrderPending:
		return templates.ToneWarn
	default:
		return templates.ToneNeutral
	}
}

func brandColumns(a rowActions[core.Brand]) []table.Column[core.Brand] {
	return []table.Column[core.Brand]{
		{
			Key:    "logo",
			Header: "Logo",
			Cell:   func(b core.Brand) templ.Component { return templates.Thumb(b.Logo, b.Name) },
		},
		textColumn("name", "Name", func(b core.Brand) string { return b.Name }),
		{
			Key:      "website",
			Header:   "Website",
			Sortable: true,
			Value:    func(b core.Brand) any { return b.Website },
			Cell:     func(b core.Brand) templ.Component { return templates.ExternalLink(b.Website, "") },
		},
		dateColumn("createdAt", "Added", func(b core.Brand) time.Time { return b.CreatedAt }),
		actionsColumn(a),
	}
}

func subAdminColumns(a rowActions[core.SubAdmin]) []table.Column[core.SubAdmin] {
	return []table.Column[core.SubAdmin]{
		textColumn("name", "Name", func(s core.SubAdmin) string { return s.Name }),
		textColumn("email", "Email", func(s core.SubAdmin) string { return s.Email }),
		textColumn("phone", "Phone", func(s core.SubAdmin) string { return s.Phone }),
		{
			Key:    "permissions",
			Header: "Permissions",
			Value:  func(s core.SubAdmin) any { return strings.Join(s.Permissions, ", ") },
		},
		activeColumn(func(s core.SubAdmin) bool { return s.Active }),
		actionsColumn(a),
	}
}

func salespersonColumns(a rowActions[core.Salesperson]) []table.Column[core.Salesperson] {
	return []table.Column[core.Salesperson]{
		textColumn("name", "Name", func(s core.Salesperson) string { return s.Name }),
		textColumn("email", "Email", func(s core.Salesperson) string { return s.Email }),
		textColumn("region", "Region", func(s core.Salesperson) string { return s.Region }),
		textColumn("role", "Role", func(s core.Salesperson) string { return s.Role }),
		{
			Key:      "commissionRate",
			Header:   "Commission",
			Sortable: true,
			Value:    func(s core.Salesperson) any { return s.CommissionRate },
			Cell:     func(s core.Salesperson) templ.Component { return templates.Text(formatPercent(s.CommissionRate)) },
		},
		moneyColumn("totalSales", "Sales", func(s core.Salesperson) decimal.Decimal { return s.TotalSales }),
		activeColumn(func(s core.Salesperson) bool { return s.Active }),
		actionsColumn(a),
	}
}

func couponColumns(now func() time.Time) ColumnSchemaBuilder[core.Coupon] {
	return func(a rowActions[core.Coupon]) []table.Column[core.Coupon] {
		return []table.Column[core.Coupon]{
			textColumn("code", "Code", func(c core.Coupon) string { return c.Code }),
			{
				Key:      "discount",
				Header:   "Discount",
				Sortable: true,
				Value:    func(c core.Coupon) any { return c.DiscountValue },
				Cell:     func(c core.Coupon) templ.Component { return templates.Text(formatDiscount(c)) },
			},
			moneyColumn("minOrder", "Min. order", func(c core.Coupon) decimal.Decimal { return c.MinOrder }),
			{
				Key:      "usage",
				Header:   "Used",
				Sortable: true,
				Value:    func(c core.Coupon) any { return c.UsedCount },
				Cell:     func(c core.Coupon) templ.Component { return templates.Text(formatUsage(c)) },
			},
			dateColumn("expiryDate", "Expires", func(c core.Coupon) time.Time { return c.ExpiresAt }),
			{
				Key:      "status",
				Header:   "Status",
				Sortable: true,
				Value:    func(c core.Coupon) any { return couponStatus(c, now()) },
				Cell: func(c core.Coupon) templ.Component {
					switch s := couponStatus(c, now()); s {
					case "Active":
						return templates.Badge(s, templates.ToneGood)
					case "Expired":
						return templates.Badge(s, templates.ToneBad)
					default:
						return templates.Badge(s, templates.ToneNeutral)
					}
				},
			},
			actionsColumn(a),
		}
	}
}

func commissionColumns(a rowActions[core.RoleCommission]) []table.Column[core.RoleCommission] {
	return []table.Column[core.RoleCommission]{
		textColumn("role", "Role", func(c core.RoleCommission) string { return c.Role }),
		{
			Key:      "percentage",
			Header:   "Commission",
			Sortable: true,
			Value:    func(c core.RoleCommission) any { return c.Percentage },
			Cell:     func(c core.RoleCommission) templ.Component { return templates.Text(formatPercent(c.Percentage)) },
		},
		textColumn("description", "Description", func(c core.RoleCommission) string { return c.Description }),
		dateColumn("updatedAt", "Updated", func(c core.RoleCommission) time.Time { return c.UpdatedAt }),
		actionsColumn(a),
	}
}

func knowledgeColumns(a rowActions[core.KnowledgeCenterEntry]) []table.Column[core.KnowledgeCenterEntry] {
	return []table.Column[core.KnowledgeCenterEntry]{
		{
			Key:    "thumbnail",
			Header: "Preview",
			Cell: func(k core.KnowledgeCenterEntry) templ.Component {
				return templates.Thumb(k.Thumbnail, k.Title)
			},
		},
		textColumn("title", "Title", func(k core.KnowledgeCenterEntry) string { return k.Title }),
		textColumn("category", "Category", func(k core.KnowledgeCenterEntry) string { return k.Category }),
		{
			Key:      "contentType",
			Header:   "Type",
			Sortable: true,
			Value:    func(k core.KnowledgeCenterEntry) any { return k.ContentType },
			Cell: func(k core.KnowledgeCenterEntry) templ.Component {
				return templates.Badge(k.ContentType, templates.ToneNeutral)
			},
		},
		{
			Key:      "published",
			Header:   "Published",
			Sortable: true,
			Value:    func(k core.KnowledgeCenterEntry) any { return k.Published },
			Cell: func(k core.KnowledgeCenterEntry) templ.Component {
				if k.Published {
					return templates.Badge("Published", templates.ToneGood)
				}
				return templates.Badge("Draft", templates.ToneWarn)
			},
		},
		dateColumn("createdAt", "Created", func(k core.KnowledgeCenterEntry) time.Time { return k.CreatedAt }),
		actionsColumn(a),
	}
}

// auditColumns has no actions: entries are immutable and open by row click.
func auditColumns(_ rowActions[core.AuditEntry]) []table.Column[core.AuditEntry] {
	return []table.Column[core.AuditEntry]{
		{
			Key:      "createdAt",
			Header:   "Time",
			Sortable: true,
			Value:    func(e core.AuditEntry) any { return e.CreatedAt },
			Cell: func(e core.AuditEntry) templ.Component {
				return templates.Text(e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			},
		},
		{
			Key:      "action",
			Header:   "Action",
			Sortable: true,
			Value:    func(e core.AuditEntry) any { return string(e.Action) },
			Cell: func(e core.AuditEntry) templ.Component {
				return templates.Badge(string(e.Action), severityTone(e.Severity))
			},
		},
		textColumn("entity", "Entity", func(e core.AuditEntry) string { return e.Entity }),
		textColumn("recordId", "Record", func(e core.AuditEntry) string { return e.RecordID }),
		textColumn("adminEmail", "Admin", func(e core.AuditEntry) string { return e.AdminEmail }),
		textColumn("ipAddress", "IP", func(e core.AuditEntry) string { return e.IPAddress }),
		textColumn("summary", "Summary", func(e core.AuditEntry) string { return e.Summary }),
	}
}

func severityTone(s core.AuditSeverity) templates.Tone {
	switch s {
	case core.SeverityHigh:
		return templates.ToneBad
	case core.SeverityMedium:
		return templates.ToneWarn
	default:
		return templates.ToneNeutral
	}
}

// ----------------------------------------------------------------------------
// Formatting
// ----------------------------------------------------------------------------

func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

func formatPercent(d decimal.Decimal) string {
	return d.String() + "%"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

func formatDiscount(c core.Coupon) string {
	if c.DiscountType == core.DiscountPercent {
		return formatPercent(c.DiscountValue)
	}
	return formatMoney(c.DiscountValue)
}

func formatUsage(c core.Coupon) string {
	if c.UsageLimit == 0 {
		return strconv.Itoa(c.UsedCount) + " / ∞"
	}
	return strconv.Itoa(c.UsedCount) + " / " + strconv.Itoa(c.UsageLimit)
}

func couponStatus(c core.Coupon, now time.Time) string {
	switch {
	case c.Expired(now):
		return "Expired"
	case !c.Active:
		return "Inactive"
	case c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit:
		return "Used up"
	default:
		return "Active"
	}
}

func activeLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}
