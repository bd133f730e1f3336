package dto

// LeaderboardEntry summarises the doubts a senior has resolved.
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	Name           string `json:"name"`
	DoubtsResolved int    `json:"doubts_resolved"`
	Points         int    `json:"points"`
}
