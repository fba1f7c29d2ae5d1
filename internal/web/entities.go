package web

// entities.go binds every registered screen to its REST resource, column
// schema and form, and serves the list, dialog and mutation routes for it.
//
// Each screen gets the same set of routes:
//
//	GET  /{entity}              list page
//	GET  /{entity}/table        table partial (sort, search, paging, refresh)
//	GET  /{entity}/new          create dialog
//	POST /{entity}              create
//	GET  /{entity}/{id}         detail dialog
//	GET  /{entity}/{id}/edit    edit dialog
//	POST /{entity}/{id}         update
//	POST /{entity}/{id}/delete  delete

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/solaradmin/internal/api"
	"github.com/JonMunkholm/solaradmin/internal/core"
	"github.com/JonMunkholm/solaradmin/internal/logging"
	"github.com/JonMunkholm/solaradmin/internal/table"
	"github.com/JonMunkholm/solaradmin/internal/web/middleware"
	"github.com/JonMunkholm/solaradmin/internal/web/templates"
)

// entityHandler serves the routes of one screen. Handlers are looked up by
// the {entity} URL segment.
type entityHandler interface {
	Screen() core.Screen
	Count(ctx context.Context) (int, error)

	List(w http.ResponseWriter, r *http.Request)
	Table(w http.ResponseWriter, r *http.Request)
	New(w http.ResponseWriter, r *http.Request)
	Show(w http.ResponseWriter, r *http.Request)
	Edit(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	// UploadField returns the form field an upload of kind fills.
	UploadField(kind, name string) (templates.Field, bool)
}

// binding is what an entity contributes beyond its screen: how to draw it
// and how to read its form.
type binding[T, In any] struct {
	columns ColumnSchemaBuilder[T]
	id      func(T) string
	name    func(T) string
	parse   func(v url.Values, creating bool) (In, core.FieldErrors)
	fields  func(rec *T) []templates.Field
	detail  func(T) []templates.DetailRow
}

type entity[T, In any] struct {
	binding[T, In]
	srv *Server
	scr core.Screen
	res *api.Resource[T]
}

// anyMode adapts a parser whose rules do not depend on create vs update.
func anyMode[In any](parse func(url.Values) (In, core.FieldErrors)) func(url.Values, bool) (In, core.FieldErrors) {
	return func(v url.Values, _ bool) (In, core.FieldErrors) { return parse(v) }
}

// bind registers b for the screen key. Screens that were never registered
// are skipped.
func bind[T, In any](s *Server, key string, b binding[T, In]) {
	scr, ok := core.Get(key)
	if !ok {
		return
	}
	s.entities[key] = &entity[T, In]{
		binding: b,
		srv:     s,
		scr:     scr,
		res:     api.NewResource[T](s.client, scr.Key, scr.APIPath, scr.Envelope),
	}
}

func (s *Server) bindEntities() {
	bind(s, "products", binding[core.Product, core.ProductInput]{
		columns: productColumns,
		id:      func(p core.Product) string { return p.ID },
		name:    func(p core.Product) string { return p.Name },
		parse:   anyMode(core.ParseProductForm),
		fields:  productFields,
		detail:  productDetail,
	})
	bind(s, "brands", binding[core.Brand, core.BrandInput]{
		columns: brandColumns,
		id:      func(b core.Brand) string { return b.ID },
		name:    func(b core.Brand) string { return b.Name },
		parse:   anyMode(core.ParseBrandForm),
		fields:  brandFields,
		detail:  brandDetail,
	})
	bind(s, "orders", binding[core.Order, core.OrderInput]{
		columns: orderColumns,
		id:      func(o core.Order) string { return o.ID },
		name:    orderName,
		parse:   anyMode(core.ParseOrderForm),
		fields:  orderFields,
		detail:  orderDetail,
	})
	bind(s, "coupons", binding[core.Coupon, core.CouponInput]{
		columns: couponColumns(s.now),
		id:      func(c core.Coupon) string { return c.ID },
		name:    func(c core.Coupon) string { return c.Code },
		parse:   anyMode(core.ParseCouponForm),
		fields:  couponFields,
		detail:  couponDetail(s.now),
	})
	bind(s, "salespersons", binding[core.Salesperson, core.SalespersonInput]{
		columns: salespersonColumns,
		id:      func(p core.Salesperson) string { return p.ID },
		name:    func(p core.Salesperson) string { return p.Name },
		parse:   anyMode(core.ParseSalespersonForm),
		fields:  salespersonFields,
		detail:  salespersonDetail,
	})
	bind(s, "commissions", binding[core.RoleCommission, core.RoleCommissionInput]{
		columns: commissionColumns,
		id:      func(c core.RoleCommission) string { return c.ID },
		name:    func(c core.RoleCommission) string { return c.Role },
		parse:   anyMode(core.ParseRoleCommissionForm),
		fields:  commissionFields,
		detail:  commissionDetail,
	})
	bind(s, "subadmins", binding[core.SubAdmin, core.SubAdminInput]{
		columns: subAdminColumns,
		id:      func(a core.SubAdmin) string { return a.ID },
		name:    func(a core.SubAdmin) string { return a.Email },
		parse:   core.ParseSubAdminForm,
		fields:  subAdminFields,
		detail:  subAdminDetail,
	})
	bind(s, "knowledge", binding[core.KnowledgeCenterEntry, core.KnowledgeInput]{
		columns: knowledgeColumns,
		id:      func(k core.KnowledgeCenterEntry) string { return k.ID },
		name:    func(k core.KnowledgeCenterEntry) string { return k.Title },
		parse:   anyMode(core.ParseKnowledgeForm),
		fields:  knowledgeFields,
		detail:  knowledgeDetail,
	})
}

func orderName(o core.Order) string {
	if o.OrderNumber != "" {
		return "#" + o.OrderNumber
	}
	return o.CustomerName
}

func (e *entity[T, In]) Screen() core.Screen { return e.scr }

// Count asks the API for a one-row page and reads its total.
func (e *entity[T, In]) Count(ctx context.Context) (int, error) {
	p, err := e.res.List(ctx, 1, 1)
	if err != nil {
		return 0, err
	}
	return p.Total, nil
}

func (e *entity[T, In]) base() string { return "/" + e.scr.Key }

func (e *entity[T, In]) recordURL(id string) string {
	return e.base() + "/" + url.PathEscape(id)
}

func (e *entity[T, In]) singular() string { return strings.ToLower(e.scr.Singular) }

func (e *entity[T, In]) actions() rowActions[T] {
	a := rowActions[T]{
		Singular: e.scr.Singular,
		Edit:     func(row T) string { return e.recordURL(e.id(row)) + "/edit" },
	}
	if !e.scr.NoDelete {
		a.Delete = func(row T) string { return e.recordURL(e.id(row)) + "/delete" }
	}
	return a
}

// buildTable fetches the rows for the screen's pagination mode. A failed
// fetch still yields a table, in its error state, alongside the error.
func (e *entity[T, In]) buildTable(ctx context.Context, q url.Values) (*table.Table[T], error) {
	sizes := e.srv.pageSizes()
	cfg := table.Config[T]{
		ID:        e.scr.Key + "-table",
		Columns:   e.columns(e.actions()),
		RowID:     e.id,
		SearchKey: e.scr.SearchKey,
		PageSizes: sizes,
		RowURL:    func(row T) string { return e.recordURL(e.id(row)) },
		BaseURL:   e.base() + "/table",
	}
	if !e.scr.ReadOnly {
		cfg.AddURL = e.base() + "/new"
	}
	state := table.ParseState(q)

	var (
		rows []T
		err  error
	)
	switch e.scr.Mode {
	case core.PaginateServer:
		page := table.QueryInt(q, "page", 1)
		size := min(table.QueryInt(q, "limit", sizes[0]), sizes[len(sizes)-1])

		var p api.Page[T]
		p, err = e.res.List(ctx, page, size)
		if err == nil && len(p.Items) == 0 && page > 1 && p.Total > 0 {
			// Past the end, usually after deleting the last row of the last page.
			page = (p.Total + size - 1) / size
			p, err = e.res.List(ctx, page, size)
		}
		rows = p.Items
		state.PageIndex = page - 1
		state.PageSize = size
		cfg.Pagination = table.Server(page, size, p.Total, nil)
	default:
		rows, err = e.res.All(ctx, e.srv.cfg.Table.ClientMaxRows)
		if errors.Is(err, api.ErrIncomplete) {
			logging.FromContext(ctx).Warn("client table truncated", "entity", e.scr.Key, "error", err)
			err = nil
		}
		cfg.Pagination = table.Client()
	}

	if err != nil {
		cfg.Error = core.MapError(err).Message
		rows = nil
	}
	return table.New(cfg, rows, state), err
}

func (e *entity[T, In]) List(w http.ResponseWriter, r *http.Request) {
	tbl, err := e.buildTable(r.Context(), r.URL.Query())
	if err != nil {
		if e.srv.expireSession(w, r, err) {
			return
		}
		logging.FromContext(r.Context()).Warn("list fetch failed", "entity", e.scr.Key, "error", err)
	}
	page := e.srv.page(r, e.scr.Label, e.base())
	e.srv.render(w, r, http.StatusOK, templates.Layout(page, templates.EntityPage("", tbl.Component())))
}

// Table renders the table partial. Fetch errors render inside the table so
// its retry control keeps working.
func (e *entity[T, In]) Table(w http.ResponseWriter, r *http.Request) {
	tbl, err := e.buildTable(r.Context(), r.URL.Query())
	if err != nil {
		if e.srv.expireSession(w, r, err) {
			return
		}
		logging.FromContext(r.Context()).Warn("table fetch failed", "entity", e.scr.Key, "error", err)
	}
	e.srv.render(w, r, http.StatusOK, tbl.Component())
}

func (e *entity[T, In]) New(w http.ResponseWriter, r *http.Request) {
	if e.scr.ReadOnly {
		e.srv.notFound(w, r)
		return
	}
	e.srv.dialog(w, r, e.scr.Label, e.base(), http.StatusOK, templates.FormDialog(e.createForm(r, nil)))
}

func (e *entity[T, In]) createForm(r *http.Request, v url.Values) templates.FormParams {
	fields := e.fields(nil)
	if v != nil {
		fields = refill(fields, v)
	}
	return templates.FormParams{
		Title:     "New " + e.singular(),
		Action:    e.base(),
		Submit:    "Create",
		Fields:    fields,
		CSRFToken: middleware.CSRFToken(r.Context()),
	}
}

func (e *entity[T, In]) editForm(r *http.Request, id string, rec *T, v url.Values) templates.FormParams {
	fields := e.fields(rec)
	if v != nil {
		fields = refill(fields, v)
	}
	return templates.FormParams{
		Title:     "Edit " + e.singular(),
		Action:    e.recordURL(id),
		Submit:    "Save",
		Fields:    fields,
		CSRFToken: middleware.CSRFToken(r.Context()),
	}
}

func (e *entity[T, In]) Show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := e.res.Get(r.Context(), id)
	if err != nil {
		e.srv.fail(w, r, err)
		return
	}

	p := templates.DetailParams{
		Title:    e.scr.Singular + ": " + e.name(rec),
		Rows:     e.detail(rec),
		EditURL:  e.recordURL(id) + "/edit",
		Singular: e.singular(),
	}
	if !e.scr.NoDelete {
		p.DeleteURL = e.recordURL(id) + "/delete"
	}
	e.srv.dialog(w, r, e.scr.Label, e.base(), http.StatusOK, templates.DetailDialog(p))
}

func (e *entity[T, In]) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := e.res.Get(r.Context(), id)
	if err != nil {
		e.srv.fail(w, r, err)
		return
	}
	e.srv.dialog(w, r, e.scr.Label, e.base(), http.StatusOK, templates.FormDialog(e.editForm(r, id, &rec, nil)))
}

func (e *entity[T, In]) Create(w http.ResponseWriter, r *http.Request) {
	if e.scr.ReadOnly {
		e.srv.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		e.srv.respondErrorStatus(w, r, fmt.Errorf("parse form: %w", err), http.StatusBadRequest)
		return
	}

	form := e.createForm(r, r.PostForm)
	in, fe := e.parse(r.PostForm, true)
	if fe != nil {
		form.Errors = fe
		e.srv.dialog(w, r, e.scr.Label, e.base(), http.StatusUnprocessableEntity, templates.FormDialog(form))
		return
	}

	m, err := e.res.Create(r.Context(), in)
	if err != nil {
		e.rejected(w, r, form, err)
		return
	}

	var id, name string
	if m.Record != nil {
		id, name = e.id(*m.Record), e.name(*m.Record)
	}
	e.srv.record(r.Context(), core.ActionCreate, e.scr.Key, id, summary("Created", e.singular(), name))
	e.srv.mutated(w, r, e.base(), orDefault(m.Message, e.scr.Singular+" created"))
}

func (e *entity[T, In]) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		e.srv.respondErrorStatus(w, r, fmt.Errorf("parse form: %w", err), http.StatusBadRequest)
		return
	}

	form := e.editForm(r, id, nil, r.PostForm)
	in, fe := e.parse(r.PostForm, false)
	if fe != nil {
		form.Errors = fe
		e.srv.dialog(w, r, e.scr.Label, e.base(), http.StatusUnprocessableEntity, templates.FormDialog(form))
		return
	}

	m, err := e.res.Update(r.Context(), id, in)
	if err != nil {
		e.rejected(w, r, form, err)
		return
	}

	name := ""
	if m.Record != nil {
		name = e.name(*m.Record)
	}
	e.srv.record(r.Context(), core.ActionUpdate, e.scr.Key, id, summary("Updated", e.singular(), name))
	e.srv.mutated(w, r, e.base(), orDefault(m.Message, e.scr.Singular+" updated"))
}

func (e *entity[T, In]) Delete(w http.ResponseWriter, r *http.Request) {
	if e.scr.NoDelete {
		e.srv.notFound(w, r)
		return
	}
	id := chi.URLParam(r, "id")
	m, err := e.res.Delete(r.Context(), id)
	if err != nil {
		e.srv.fail(w, r, err)
		return
	}
	e.srv.record(r.Context(), core.ActionDelete, e.scr.Key, id, summary("Deleted", e.singular(), id))
	e.srv.mutated(w, r, e.base(), orDefault(m.Message, e.scr.Singular+" deleted"))
}

// rejected re-renders a submitted form with the API's reason, keeping what
// the admin typed.
func (e *entity[T, In]) rejected(w http.ResponseWriter, r *http.Request, form templates.FormParams, err error) {
	if e.srv.expireSession(w, r, err) {
		return
	}
	status := statusFor(err)
	logging.FromContext(r.Context()).Warn("mutation rejected", "entity", e.scr.Key, "status", status, "error", err)

	msg := core.MapError(err)
	form.Message = msg.Message
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Kind != api.KindStatus {
		form.Message += ". " + msg.Action
	}
	e.srv.dialog(w, r, e.scr.Label, e.base(), status, templates.FormDialog(form))
}

func (e *entity[T, In]) UploadField(kind, name string) (templates.Field, bool) {
	return uploadField(e.fields(nil), kind, name)
}

func summary(verb, singular, name string) string {
	if name == "" {
		return verb + " " + singular
	}
	return verb + " " + singular + " " + name
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// entityRoute resolves the {entity} segment and hands the request to fn,
// usually a method expression such as entityHandler.List.
func (s *Server) entityRoute(fn func(entityHandler, http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := s.entities[chi.URLParam(r, "entity")]
		if !ok {
			s.notFound(w, r)
			return
		}
		fn(h, w, r)
	}
}

// mutated finishes a successful create, update or delete. HTMX callers get
// an empty dialog, a toast and the refresh event every table listens for.
func (s *Server) mutated(w http.ResponseWriter, r *http.Request, listURL, message string) {
	if !isHTMX(r) {
		http.Redirect(w, r, listURL, http.StatusSeeOther)
		return
	}
	w.Header().Set("HX-Trigger", table.RefreshEvent)
	s.render(w, r, http.StatusOK, templates.Toast(message, templates.ToneGood))
}

// dialog renders c alone for HTMX, or inside the page chrome for a full load.
func (s *Server) dialog(w http.ResponseWriter, r *http.Request, title, active string, status int, c templ.Component) {
	if !isHTMX(r) {
		c = templates.Layout(s.page(r, title, active), c)
	}
	s.render(w, r, status, c)
}

// record writes an audit entry for the signed-in admin. Without a database
// it does nothing; a failed write is logged and never fails the request.
func (s *Server) record(ctx context.Context, action core.AuditAction, entity, recordID, text string) {
	if s.audit == nil {
		return
	}
	params := core.AuditLogParams{
		Action:   action,
		Entity:   entity,
		RecordID: recordID,
		Summary:  text,
	}
	if u, ok := s.user(ctx); ok {
		params.AdminID, params.AdminEmail = u.ID, u.Email
	}

	// The request may be cancelled right after the response; keep the write.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := s.audit.Log(ctx, params); err != nil {
		logging.FromContext(ctx).Error("audit write failed", "action", action, "entity", entity, "error", err)
	}
}
