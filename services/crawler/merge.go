package crawler

import (
	"fmt"
	"strings"
	"time"

	"arena-crawler/lib/scrapers/arena"
	"arena-crawler/lib/textutil"
)

// Merger combines a list-stage profile with an optional detail-stage
// profile into one canonical record. Merge is total: any combination of
// missing detail or empty fields still produces a valid record.
type Merger struct {
	BaseUrl   string
	SourceUrl string
	// CompanyFromPosition derives a company name from the free-form
	// current position. Swappable since the remote documents no rule.
	CompanyFromPosition func(position string) string
	Now                 func() time.Time
}

func NewMerger(baseUrl string) Merger {
	return Merger{
		BaseUrl:             strings.TrimRight(baseUrl, "/"),
		SourceUrl:           strings.TrimRight(baseUrl, "/") + "/profiles",
		CompanyFromPosition: DefaultCompanyFromPosition,
		Now:                 time.Now,
	}
}

// DefaultCompanyFromPosition takes everything after a trailing "@" or
// " at " separator, and otherwise returns the position unchanged.
func DefaultCompanyFromPosition(position string) string {
	position = strings.TrimSpace(position)
	if position == "" {
		return ""
	}
	if idx := strings.LastIndex(position, "@"); idx >= 0 {
		company := strings.TrimSpace(position[idx+1:])
		if company != "" {
			return company
		}
	}
	if idx := strings.LastIndex(position, " at "); idx >= 0 {
		company := strings.TrimSpace(position[idx+len(" at "):])
		if company != "" {
			return company
		}
	}
	return position
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func firstNonEmpty(values ...[]string) []string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return []string{}
}

// pickLocation returns the city/country pair from whichever source
// supplies both parts, falling back to a single part when that is all
// there is.
func pickLocation(list arena.ListProfile, detail *arena.DetailProfile) (string, string) {
	if list.City != "" && list.Country != "" {
		return list.City, list.Country
	}
	if detail != nil {
		ext := detail.ExtendedProfile
		if ext.City != "" && ext.Country != "" {
			return ext.City, ext.Country
		}
	}
	if list.City != "" || list.Country != "" {
		return list.City, list.Country
	}
	if detail != nil {
		return detail.ExtendedProfile.City, detail.ExtendedProfile.Country
	}
	return "", ""
}

func (m Merger) Merge(list arena.ListProfile, detail *arena.DetailProfile) CanonicalProfile {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}

	p := CanonicalProfile{
		ScrapedAt: now(),
		SourceUrl: optional(m.SourceUrl),
	}

	username := list.Username
	displayName := list.DisplayName
	if detail != nil {
		if detail.Profile.Username != "" {
			username = detail.Profile.Username
		}
		if displayName == "" {
			displayName = detail.Profile.DisplayName
		}
	}
	p.Username = textutil.NormalizeUsername(username)
	p.DisplayName = optional(displayName)

	if detail != nil && detail.Profile.Id > 0 {
		id := detail.Profile.Id
		p.UserId = &id
	} else if list.UserId > 0 {
		id := list.UserId
		p.UserId = &id
	}

	// a record must always carry a username, it is the upsert key
	if p.Username == "" {
		if p.UserId != nil {
			p.Username = fmt.Sprintf("@user-%d", *p.UserId)
		} else {
			p.Username = "@unknown"
		}
	}

	p.Location = optional(textutil.JoinLocation(pickLocation(list, detail)))

	position := list.CurrentPosition
	isStudent := list.IsUniversityStudent
	avatar := list.AvatarUrl

	if detail != nil {
		ext := detail.ExtendedProfile

		p.Languages = firstNonEmpty(ext.Languages, list.Languages)
		p.Tags = orEmpty(ext.Skills)
		p.IAmARoles = firstNonEmpty(ext.JobRoles, list.YourRoles)
		p.LookingForRoles = orEmpty(ext.RolesLookingFor)
		p.InterestedInTopics = orEmpty(ext.InterestedUseCases)
		p.AccountRoles = orEmpty(detail.Profile.AccountRoles)
		p.Batches = orEmpty(detail.Profile.Batches)

		if ext.IsUniversityStudent != nil {
			isStudent = ext.IsUniversityStudent
		}
		if ext.CurrentPosition != "" {
			position = ext.CurrentPosition
		}
		if ext.AvatarUrl != "" {
			avatar = ext.AvatarUrl
		}

		p.LookingForTeammates = ext.LookingForCollab
		p.ProjectDescription = optional(ext.LookingToBuild)
		p.About = optional(ext.About)
		p.GithubHandle = optional(ext.GithubHandle)
		p.LinkedinHandle = optional(ext.LinkedinHandle)
		p.TwitterHandle = optional(ext.TwitterHandle)
		p.TelegramHandle = optional(ext.TelegramHandle)
	} else {
		p.Languages = orEmpty(list.Languages)
		p.Tags = []string{}
		p.IAmARoles = orEmpty(list.YourRoles)
		p.LookingForRoles = []string{}
		p.InterestedInTopics = []string{}
		p.AccountRoles = []string{}
		p.Batches = []string{}
	}

	p.IsUniversityStudent = isStudent
	p.CurrentPosition = optional(position)
	if position != "" && m.CompanyFromPosition != nil {
		p.Company = optional(m.CompanyFromPosition(position))
	}
	p.AvatarUrl = optional(avatar)

	if m.BaseUrl != "" {
		p.ProfileUrl = optional(m.BaseUrl + "/profiles/" + textutil.BareUsername(p.Username))
	}

	return p
}
