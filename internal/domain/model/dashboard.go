//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// DashboardStats is the admin landing page summary.
type DashboardStats struct {
	TotalPosts     int
	DraftPosts     int
	Events         int
	Publications   int
	RecentPosts    []*Post
	UpcomingEvents []*Event
}
