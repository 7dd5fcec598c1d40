package crawler

import (
	"database/sql"
	"encoding/json"
	"time"

	"arena-crawler/services/crawler/db"
)

// CanonicalProfile is the merged, storage-ready representation of one
// remote user. Nil pointers mean the field was never observed; slices are
// never nil so they always serialize to JSON arrays.
type CanonicalProfile struct {
	UserId              *int64
	Username            string
	DisplayName         *string
	Location            *string
	Languages           []string
	Tags                []string
	IAmARoles           []string
	LookingForRoles     []string
	InterestedInTopics  []string
	AccountRoles        []string
	Batches             []string
	IsUniversityStudent *bool
	CurrentPosition     *string
	Company             *string
	LookingForTeammates *bool
	ProjectDescription  *string
	About               *string
	GithubHandle        *string
	LinkedinHandle      *string
	TwitterHandle       *string
	TelegramHandle      *string
	ProfileUrl          *string
	AvatarUrl           *string
	SourceUrl           *string
	ScrapedAt           time.Time
}

func jsonArray(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

// upsertParams flattens the canonical record into a row. created_at is
// only honored on first insert, the upsert keeps the original value.
func (p CanonicalProfile) upsertParams(now time.Time) (db.UpsertProfileParams, error) {
	arrays := [7]string{}
	for i, items := range [][]string{
		p.Languages, p.Tags, p.IAmARoles, p.LookingForRoles,
		p.InterestedInTopics, p.AccountRoles, p.Batches,
	} {
		encoded, err := jsonArray(items)
		if err != nil {
			return db.UpsertProfileParams{}, err
		}
		arrays[i] = encoded
	}

	return db.UpsertProfileParams{
		UserID:              nullInt64(p.UserId),
		Username:            p.Username,
		DisplayName:         nullString(p.DisplayName),
		Location:            nullString(p.Location),
		Languages:           arrays[0],
		Tags:                arrays[1],
		IAmARoles:           arrays[2],
		LookingForRoles:     arrays[3],
		InterestedInTopics:  arrays[4],
		AccountRoles:        arrays[5],
		Batches:             arrays[6],
		IsUniversityStudent: nullBool(p.IsUniversityStudent),
		CurrentPosition:     nullString(p.CurrentPosition),
		Company:             nullString(p.Company),
		LookingForTeammates: nullBool(p.LookingForTeammates),
		ProjectDescription:  nullString(p.ProjectDescription),
		About:               nullString(p.About),
		GithubHandle:        nullString(p.GithubHandle),
		LinkedinHandle:      nullString(p.LinkedinHandle),
		TwitterHandle:       nullString(p.TwitterHandle),
		TelegramHandle:      nullString(p.TelegramHandle),
		ProfileUrl:          nullString(p.ProfileUrl),
		AvatarUrl:           nullString(p.AvatarUrl),
		SourceUrl:           nullString(p.SourceUrl),
		ScrapedAt:           p.ScrapedAt.Unix(),
		CreatedAt:           now.Unix(),
		UpdatedAt:           now.Unix(),
	}, nil
}
