package services

import (
	"github.com/SAP-F-2025/learning-portal-service/internal/auth"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
)

// NavItem is one entry of the sidebar menu.
type NavItem struct {
	Label string `json:"label"`
	Href  string `json:"href"`
	Icon  string `json:"icon"`
}

var studentNav = []NavItem{
	{Label: "Dashboard", Href: "/dashboard", Icon: "home"},
	{Label: "Attendance", Href: "/attendance", Icon: "calendar-check"},
	{Label: "Resources", Href: "/resources", Icon: "book-open"},
	{Label: "My Notes", Href: "/notes", Icon: "sticky-note"},
	{Label: "Schedule", Href: "/schedule", Icon: "calendar"},
	{Label: "Profile", Href: "/profile", Icon: "user"},
	{Label: "Upload Resource", Href: "/upload-resource", Icon: "upload"},
}

var adminNav = NavItem{Label: "Admin", Href: "/admin", Icon: "shield"}

// Navigation returns the menu for session's role. The admin entry is only
// present for admins.
func Navigation(session *auth.Session) []NavItem {
	if session == nil {
		return []NavItem{}
	}
	items := make([]NavItem, 0, len(studentNav)+1)
	items = append(items, studentNav...)
	if auth.IsAuthorized(session, models.RoleAdmin) {
		items = append(items, adminNav)
	}
	return items
}
