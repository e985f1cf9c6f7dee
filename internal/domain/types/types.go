// Package types contains common types used across the application
package types

// Stats is the aggregate over every clip in a store.
type Stats struct {
	TotalClips    int `json:"total_clips"`
	TotalVotes    int `json:"total_votes"`
	FeaturedCount int `json:"featured_count"`
}

// PlatformStats is the /api/stats response body.
type PlatformStats struct {
	TotalClips    int `json:"total_clips"`
	TotalVotes    int `json:"total_votes"`
	ActiveUsers   int `json:"active_users"`
	TrendingClips int `json:"trending_clips"`
	FeaturedCount int `json:"featured_count"`
}

// NewPlatformStats combines clip stats with vote log activity.
// Trending clips are the featured ones.
func NewPlatformStats(s Stats, activeUsers int) PlatformStats {
	return PlatformStats{
		TotalClips:    s.TotalClips,
		TotalVotes:    s.TotalVotes,
		ActiveUsers:   activeUsers,
		TrendingClips: s.FeaturedCount,
		FeaturedCount: s.FeaturedCount,
	}
}
