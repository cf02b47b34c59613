package jobs

import (
	"strings"

	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/util"
)

// Matches reports whether job is recommended to user: the job location
// contains the user's location, or the job's text mentions any crop the user
// grows. Both tests ignore case. A blank location or crop never matches;
// a plain substring test would treat an empty location as matching every
// job and recommend the whole board to users who have not set one.
func Matches(job models.Job, user models.User) bool {
	if loc := strings.TrimSpace(user.Location); loc != "" && util.ContainsFold(job.Location, loc) {
		return true
	}
	text := strings.Join([]string{job.Title, job.Company, job.Description, job.CropFocus}, " ")
	for _, crop := range user.CropsGrown {
		if crop = strings.TrimSpace(crop); crop != "" && util.ContainsFold(text, crop) {
			return true
		}
	}
	return false
}

// MatchesQuery is the board's text filter over title, company and crop focus.
func MatchesQuery(job models.Job, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	return util.ContainsFold(job.Title, query) ||
		util.ContainsFold(job.Company, query) ||
		util.ContainsFold(job.CropFocus, query)
}

// GrowsCrop reports whether user lists crop among the crops grown.
func GrowsCrop(user models.User, crop string) bool {
	for _, c := range user.CropsGrown {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(crop)) {
			return true
		}
	}
	return false
}
