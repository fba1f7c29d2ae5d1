package core

import (
	"net"
	"net/netip"
	"time"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionUpload AuditAction = "upload"
	ActionLogin  AuditAction = "login"
	ActionLogout AuditAction = "logout"
)

// AuditActions lists the actions in the order the audit filter offers them.
var AuditActions = []AuditAction{ActionCreate, ActionUpdate, ActionDelete, ActionUpload, ActionLogin, ActionLogout}

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID         string        `json:"id"`
	Action     AuditAction   `json:"action"`
	Severity   AuditSeverity `json:"severity"`
	Entity     string        `json:"entity"`
	RecordID   string        `json:"recordId,omitempty"`
	AdminID    string        `json:"adminId,omitempty"`
	AdminEmail string        `json:"adminEmail,omitempty"`
	IPAddress  string        `json:"ipAddress,omitempty"`
	UserAgent  string        `json:"userAgent,omitempty"`
	Summary    string        `json:"summary,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// AuditLogParams contains parameters for creating an audit log entry.
// IPAddress and UserAgent default to the request metadata in the context.
type AuditLogParams struct {
	Action     AuditAction
	Entity     string
	RecordID   string
	AdminID    string
	AdminEmail string
	IPAddress  string
	UserAgent  string
	Summary    string
}

// auditSeverity returns the severity recorded for an action.
func auditSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionDelete:
		return SeverityHigh
	case ActionLogin, ActionLogout:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// normalizeIP strips a port and returns the canonical address, or "" when
// ip is not an address.
func normalizeIP(ip string) string {
	if ip == "" {
		return ""
	}
	host := ip
	if h, _, err := net.SplitHostPort(ip); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}
