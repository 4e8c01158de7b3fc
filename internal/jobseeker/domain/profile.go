package domain

import (
	"strings"

	sessiondomain "jobseeker-bot/internal/session/domain"
)

// Profile is the finalized job seeker record written once per completed session.
// JSON names match the job_seekers columns.
type Profile struct {
	CreatedBy       string  `json:"created_by"`
	FullName        string  `json:"full_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	JobTitle        string  `json:"job_title"`
	Region          string  `json:"region"`
	Location        string  `json:"location"`
	City            string  `json:"city"`
	Bio             string  `json:"bio"`
	YearsExperience string  `json:"years_experience"`
	Instagram       *string `json:"instagram"`
	Facebook        *string `json:"facebook"`
	Telegram        *string `json:"telegram"`
	ProfileImage    *string `json:"profile_image"`
}

// FromSession builds the record from a session's collected answers. The email doubles as creator.
func FromSession(s sessiondomain.Session) Profile {
	p := Profile{
		CreatedBy:       s.Email,
		FullName:        s.FullName,
		Email:           s.Email,
		Phone:           s.Phone,
		JobTitle:        s.JobTitle,
		Region:          s.Region,
		Location:        s.Location,
		City:            s.City,
		Bio:             s.Bio,
		YearsExperience: s.YearsExperience,
		Instagram:       optional(s.SocialMedia),
		Telegram:        optional(telegramHandle(s.Username)),
	}
	if s.ProfileImage != nil {
		img := *s.ProfileImage
		p.ProfileImage = &img
	}
	return p
}

func telegramHandle(username string) string {
	if username == "" {
		return ""
	}
	return "@" + strings.TrimPrefix(username, "@")
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
