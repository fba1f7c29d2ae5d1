package table

import "strings"

// Element is one node on a click path inside a row, as reported by the browser.
type Element struct {
	Tag  string
	Role string
}

// interactiveTags and interactiveRoles are the nested controls that must
// never open the row's detail view.
var (
	interactiveTags  = []string{"button", "a", "input", "select", "textarea"}
	interactiveRoles = []string{"button", "link", "menuitem", "menu", "checkbox", "option", "switch", "tab", "combobox", "textbox", "radio"}
)

// Interactive reports whether the element is a control of its own.
func (e Element) Interactive() bool {
	tag := strings.ToLower(e.Tag)
	for _, t := range interactiveTags {
		if tag == t {
			return true
		}
	}
	role := strings.ToLower(strings.TrimSpace(e.Role))
	for _, r := range interactiveRoles {
		if role == r {
			return true
		}
	}
	return false
}

// InteractiveSelector is the CSS selector matching the same elements as Interactive.
func InteractiveSelector() string {
	parts := make([]string, 0, len(interactiveTags)+len(interactiveRoles))
	parts = append(parts, interactiveTags...)
	for _, r := range interactiveRoles {
		parts = append(parts, "[role="+r+"]")
	}
	return strings.Join(parts, ",")
}

// RowTrigger is the hx-trigger value for a clickable row. The filter drops
// clicks that originate inside a nested control.
func RowTrigger() string {
	return "click[!target.closest('" + InteractiveSelector() + "')]"
}
