// Package log writes one JSON object per line for request, audit and order events.
package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	levelInfo     = "info"
	levelAudit    = "audit"
	levelSecurity = "security"
	levelWarn     = "warn"
	levelError    = "error"
)

type entry struct {
	TS      string         `json:"ts"`
	Level   string         `json:"level"`
	Action  string         `json:"action,omitempty"`
	OrderID string         `json:"order_id,omitempty"`
	ReqID   string         `json:"req_id,omitempty"`
	IP      string         `json:"ip,omitempty"`
	Method  string         `json:"method,omitempty"`
	Path    string         `json:"path,omitempty"`
	UserID  string         `json:"user_id,omitempty"`
	Status  int            `json:"status,omitempty"`
	Err     string         `json:"err,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// userIDer is satisfied by *domain.User without importing it here.
type userIDer interface{ GetID() string }

func write(level string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, Action: action}
	// order_id is lifted to the top level of the line
	if id, ok := fields["order_id"].(string); ok {
		e.OrderID = id
		if len(fields) > 1 {
			e.Fields = make(map[string]any, len(fields)-1)
			for k, v := range fields {
				if k != "order_id" {
					e.Fields[k] = v
				}
			}
		}
	} else {
		e.Fields = fields
	}
	if c != nil {
		e.IP = c.IP()
		e.Method = c.Method()
		e.Path = c.Path()
		e.Status = c.Response().StatusCode()
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e.ReqID = rid
		}
		if u, ok := c.Locals("user").(userIDer); ok && u != nil {
			e.UserID = u.GetID()
		}
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

// SessionTag shortens a session id for log lines; the full id is a bearer credential.
func SessionTag(sid string) string {
	if len(sid) <= 8 {
		return sid
	}
	return sid[:8] + "…"
}

// All helpers accept a nil ctx for events raised outside a request (startup, background sends).

func Info(c *fiber.Ctx, action string, fields map[string]any) { write(levelInfo, c, action, nil, fields) }

// Audit records admin changes and placed orders.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(levelAudit, c, action, nil, fields)
}

// Security records rejected logins, denied admin access, csrf and rate limit hits.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(levelSecurity, c, action, nil, fields)
}

func Warn(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(levelWarn, c, action, err, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(levelError, c, action, err, fields)
}
