package service

import (
	"sort"

	"github.com/noah-isme/nexus-api/internal/dto"
	"github.com/noah-isme/nexus-api/internal/models"
)

// PointsPerResolution is the leaderboard reward for each resolved doubt.
const PointsPerResolution = 5

// Viewer is the acting student as seen by the doubt rules.
type Viewer struct {
	ID          string
	DisplayName string
	Major       string
	Year        int
}

// CanResolve reports whether the viewer may see and resolve the doubt.
// First-year students never qualify, even against a doubt carrying a lower year.
func CanResolve(doubt models.Doubt, viewer Viewer) bool {
	if viewer.Year <= 1 {
		return false
	}
	return doubt.Major == viewer.Major && doubt.StudentYear < viewer.Year
}

// EligibleDoubts keeps the pending doubts the viewer may resolve, in input order.
func EligibleDoubts(pending []models.Doubt, viewer Viewer) []models.Doubt {
	eligible := make([]models.Doubt, 0, len(pending))
	for _, doubt := range pending {
		if CanResolve(doubt, viewer) {
			eligible = append(eligible, doubt)
		}
	}
	return eligible
}

// AggregateLeaderboard groups resolved doubts by senior and ranks them by points.
// Groups with equal points keep the order in which their senior first appeared.
func AggregateLeaderboard(resolved []models.Doubt) []dto.LeaderboardEntry {
	entries := make([]dto.LeaderboardEntry, 0)
	index := make(map[string]int)

	for _, doubt := range resolved {
		if doubt.Senior == nil || *doubt.Senior == "" {
			continue
		}
		name := *doubt.Senior
		pos, ok := index[name]
		if !ok {
			pos = len(entries)
			index[name] = pos
			entries = append(entries, dto.LeaderboardEntry{Name: name})
		}
		entries[pos].DoubtsResolved++
		entries[pos].Points += PointsPerResolution
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}
