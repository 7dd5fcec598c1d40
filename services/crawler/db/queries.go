package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Profile is one row of the profiles table. Array-valued columns are
// stored as JSON text and never null.
type Profile struct {
	ID                  int64
	UserID              sql.NullInt64
	Username            string
	DisplayName         sql.NullString
	Location            sql.NullString
	Languages           string
	Tags                string
	IAmARoles           string
	LookingForRoles     string
	InterestedInTopics  string
	AccountRoles        string
	Batches             string
	IsUniversityStudent sql.NullBool
	CurrentPosition     sql.NullString
	Company             sql.NullString
	LookingForTeammates sql.NullBool
	ProjectDescription  sql.NullString
	About               sql.NullString
	GithubHandle        sql.NullString
	LinkedinHandle      sql.NullString
	TwitterHandle       sql.NullString
	TelegramHandle      sql.NullString
	ProfileUrl          sql.NullString
	AvatarUrl           sql.NullString
	SourceUrl           sql.NullString
	ScrapedAt           int64
	CreatedAt           int64
	UpdatedAt           int64
}

const upsertProfile = `
INSERT INTO profiles (
    user_id, username, display_name, location,
    languages, tags, i_am_a_roles, looking_for_roles, interested_in_topics,
    account_roles, batches,
    is_university_student, current_position, company,
    looking_for_teammates, project_description, about,
    github_handle, linkedin_handle, twitter_handle, telegram_handle,
    profile_url, avatar_url, source_url,
    scraped_at, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (username) DO UPDATE SET
    user_id = excluded.user_id,
    display_name = excluded.display_name,
    location = excluded.location,
    languages = excluded.languages,
    tags = excluded.tags,
    i_am_a_roles = excluded.i_am_a_roles,
    looking_for_roles = excluded.looking_for_roles,
    interested_in_topics = excluded.interested_in_topics,
    account_roles = excluded.account_roles,
    batches = excluded.batches,
    is_university_student = excluded.is_university_student,
    current_position = excluded.current_position,
    company = excluded.company,
    looking_for_teammates = excluded.looking_for_teammates,
    project_description = excluded.project_description,
    about = excluded.about,
    github_handle = excluded.github_handle,
    linkedin_handle = excluded.linkedin_handle,
    twitter_handle = excluded.twitter_handle,
    telegram_handle = excluded.telegram_handle,
    profile_url = excluded.profile_url,
    avatar_url = excluded.avatar_url,
    source_url = excluded.source_url,
    scraped_at = excluded.scraped_at,
    updated_at = excluded.updated_at
`

type UpsertProfileParams struct {
	UserID              sql.NullInt64
	Username            string
	DisplayName         sql.NullString
	Location            sql.NullString
	Languages           string
	Tags                string
	IAmARoles           string
	LookingForRoles     string
	InterestedInTopics  string
	AccountRoles        string
	Batches             string
	IsUniversityStudent sql.NullBool
	CurrentPosition     sql.NullString
	Company             sql.NullString
	LookingForTeammates sql.NullBool
	ProjectDescription  sql.NullString
	About               sql.NullString
	GithubHandle        sql.NullString
	LinkedinHandle      sql.NullString
	TwitterHandle       sql.NullString
	TelegramHandle      sql.NullString
	ProfileUrl          sql.NullString
	AvatarUrl           sql.NullString
	SourceUrl           sql.NullString
	ScrapedAt           int64
	CreatedAt           int64
	UpdatedAt           int64
}

func (q *Queries) UpsertProfile(ctx context.Context, arg UpsertProfileParams) error {
	_, err := q.db.ExecContext(ctx, upsertProfile,
		arg.UserID,
		arg.Username,
		arg.DisplayName,
		arg.Location,
		arg.Languages,
		arg.Tags,
		arg.IAmARoles,
		arg.LookingForRoles,
		arg.InterestedInTopics,
		arg.AccountRoles,
		arg.Batches,
		arg.IsUniversityStudent,
		arg.CurrentPosition,
		arg.Company,
		arg.LookingForTeammates,
		arg.ProjectDescription,
		arg.About,
		arg.GithubHandle,
		arg.LinkedinHandle,
		arg.TwitterHandle,
		arg.TelegramHandle,
		arg.ProfileUrl,
		arg.AvatarUrl,
		arg.SourceUrl,
		arg.ScrapedAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getProfile = `
SELECT id, user_id, username, display_name, location,
    languages, tags, i_am_a_roles, looking_for_roles, interested_in_topics,
    account_roles, batches,
    is_university_student, current_position, company,
    looking_for_teammates, project_description, about,
    github_handle, linkedin_handle, twitter_handle, telegram_handle,
    profile_url, avatar_url, source_url,
    scraped_at, created_at, updated_at
FROM profiles WHERE username = ?
`

func (q *Queries) GetProfile(ctx context.Context, username string) (Profile, error) {
	row := q.db.QueryRowContext(ctx, getProfile, username)
	var p Profile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Username,
		&p.DisplayName,
		&p.Location,
		&p.Languages,
		&p.Tags,
		&p.IAmARoles,
		&p.LookingForRoles,
		&p.InterestedInTopics,
		&p.AccountRoles,
		&p.Batches,
		&p.IsUniversityStudent,
		&p.CurrentPosition,
		&p.Company,
		&p.LookingForTeammates,
		&p.ProjectDescription,
		&p.About,
		&p.GithubHandle,
		&p.LinkedinHandle,
		&p.TwitterHandle,
		&p.TelegramHandle,
		&p.ProfileUrl,
		&p.AvatarUrl,
		&p.SourceUrl,
		&p.ScrapedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const profileExists = `SELECT EXISTS(SELECT 1 FROM profiles WHERE username = ?)`

func (q *Queries) ProfileExists(ctx context.Context, username string) (bool, error) {
	row := q.db.QueryRowContext(ctx, profileExists, username)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const countProfiles = `SELECT COUNT(*) FROM profiles`

func (q *Queries) CountProfiles(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countProfiles)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listUsernames = `SELECT username FROM profiles ORDER BY username`

func (q *Queries) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listUsernames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, err
		}
		items = append(items, username)
	}
	return items, rows.Err()
}
