// Package core holds the dashboard's domain, independent of HTTP.
//
// # Entities and forms
//
// Entity records ([Product], [Order], [Coupon], ...) mirror what the admin API
// returns. Each editable entity has an input type ([ProductInput], ...) with
// `validate` tags and a Parse*Form function that decodes submitted form
// values and returns [FieldErrors] keyed by form field name.
//
// # Screen Registry
//
// Every CRUD screen is registered at init time using [Register]:
//
//	core.Register(core.Screen{
//	    Key:      "brands",
//	    Group:    "Catalog",
//	    Label:    "Brands",
//	    APIPath:  "/admin/brands",
//	    Envelope: api.FlatTotalData,
//	    Mode:     core.PaginateClient,
//	})
//
// The registrations live in package screens; import it for side effects.
//
// # Uploads
//
// [UploadPolicy] sniffs and size-checks files before they are proxied to the
// API, and [UploadLimiter] bounds how many are in flight.
//
// # Audit
//
// [AuditService] records create, update, delete, upload and login events in
// Postgres. [Maintenance] purges old audit rows and expired sessions.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has its own code prefix:
//
//   - API001-API007: admin API failures
//   - AUTH001-AUTH002: login and session problems
//   - VAL001: form validation
//   - UPL001-UPL007: upload rejections
//   - DB001-DB003: Postgres connectivity
//   - RATE001: rate limiting
package core
