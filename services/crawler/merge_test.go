package crawler

import (
	"testing"
	"time"

	"arena-crawler/lib/scrapers/arena"

	"github.com/stretchr/testify/require"
)

func testMerger() Merger {
	m := NewMerger("https://arena.colosseum.org")
	m.Now = func() time.Time { return time.Unix(1700000000, 0) }
	return m
}

func boolPtr(b bool) *bool { return &b }

func sampleDetail() *arena.DetailProfile {
	detail := &arena.DetailProfile{}
	detail.Profile.Id = 42
	detail.Profile.Username = "zsh28"
	detail.Profile.DisplayName = "Zee"
	detail.Profile.AccountRoles = []string{"member"}
	detail.Profile.Batches = []string{"renaissance"}
	detail.ExtendedProfile.City = "Nairobi"
	detail.ExtendedProfile.Country = "Kenya"
	detail.ExtendedProfile.Languages = []string{"English", "Swahili"}
	detail.ExtendedProfile.Skills = []string{"rust", "anchor"}
	detail.ExtendedProfile.JobRoles = []string{"Developer"}
	detail.ExtendedProfile.RolesLookingFor = []string{"Designer"}
	detail.ExtendedProfile.InterestedUseCases = []string{"DeFi"}
	detail.ExtendedProfile.IsUniversityStudent = boolPtr(true)
	detail.ExtendedProfile.CurrentPosition = "Engineer @ Acme"
	detail.ExtendedProfile.LookingForCollab = boolPtr(true)
	detail.ExtendedProfile.LookingToBuild = "a payments app"
	detail.ExtendedProfile.About = "hello"
	detail.ExtendedProfile.GithubHandle = "zsh28"
	detail.ExtendedProfile.AvatarUrl = "https://cdn.example/a.png"
	return detail
}

func TestMergeIsTotal(t *testing.T) {
	p := testMerger().Merge(arena.ListProfile{}, nil)

	// the upsert key must always be present
	require.Equal(t, "@unknown", p.Username)
	require.Nil(t, p.UserId)
	require.Nil(t, p.DisplayName)
	require.Nil(t, p.Location)
	require.Nil(t, p.IsUniversityStudent)
	require.Nil(t, p.About)

	// slices serialize to JSON arrays, never null
	require.NotNil(t, p.Languages)
	require.NotNil(t, p.Tags)
	require.NotNil(t, p.IAmARoles)
	require.NotNil(t, p.LookingForRoles)
	require.NotNil(t, p.InterestedInTopics)
	require.NotNil(t, p.AccountRoles)
	require.NotNil(t, p.Batches)
}

func TestMergeUsernameFallsBackToId(t *testing.T) {
	p := testMerger().Merge(arena.ListProfile{UserId: 42}, nil)
	require.Equal(t, "@user-42", p.Username)
	require.NotNil(t, p.UserId)
	require.Equal(t, int64(42), *p.UserId)
}

func TestMergeListOnly(t *testing.T) {
	list := arena.ListProfile{
		UserId:          42,
		Username:        "zsh28",
		DisplayName:     "Zee",
		City:            "Nairobi",
		Country:         "Kenya",
		Languages:       []string{"English"},
		YourRoles:       []string{"Developer"},
		CurrentPosition: "Engineer at Acme",
		AvatarUrl:       "https://cdn.example/a.png",
	}

	p := testMerger().Merge(list, nil)

	require.Equal(t, "@zsh28", p.Username)
	require.Equal(t, "Zee", *p.DisplayName)
	require.Equal(t, "Nairobi, Kenya", *p.Location)
	require.Equal(t, []string{"English"}, p.Languages)
	require.Equal(t, []string{"Developer"}, p.IAmARoles)
	require.Equal(t, "Engineer at Acme", *p.CurrentPosition)
	require.Equal(t, "Acme", *p.Company)
	require.Equal(t, "https://arena.colosseum.org/profiles/zsh28", *p.ProfileUrl)
	require.Equal(t, "https://arena.colosseum.org/profiles", *p.SourceUrl)

	// fields only the detail stage supplies stay empty
	require.Empty(t, p.Tags)
	require.Empty(t, p.LookingForRoles)
	require.Nil(t, p.About)
	require.Nil(t, p.LookingForTeammates)
}

func TestMergeDetailTakesPrecedence(t *testing.T) {
	list := arena.ListProfile{
		UserId:          41, // stale, the detail id wins
		Username:        "old-handle",
		DisplayName:     "Old Name",
		Languages:       []string{"French"},
		YourRoles:       []string{"Founder"},
		CurrentPosition: "freelancer",
	}

	p := testMerger().Merge(list, sampleDetail())

	require.Equal(t, "@zsh28", p.Username)
	require.Equal(t, int64(42), *p.UserId)
	// list display name is kept when present
	require.Equal(t, "Old Name", *p.DisplayName)
	require.Equal(t, "Nairobi, Kenya", *p.Location)
	require.Equal(t, []string{"English", "Swahili"}, p.Languages)
	require.Equal(t, []string{"rust", "anchor"}, p.Tags)
	require.Equal(t, []string{"Developer"}, p.IAmARoles)
	require.Equal(t, []string{"Designer"}, p.LookingForRoles)
	require.Equal(t, []string{"DeFi"}, p.InterestedInTopics)
	require.Equal(t, []string{"member"}, p.AccountRoles)
	require.Equal(t, []string{"renaissance"}, p.Batches)
	require.Equal(t, true, *p.IsUniversityStudent)
	require.Equal(t, "Engineer @ Acme", *p.CurrentPosition)
	require.Equal(t, "Acme", *p.Company)
	require.Equal(t, true, *p.LookingForTeammates)
	require.Equal(t, "a payments app", *p.ProjectDescription)
	require.Equal(t, "hello", *p.About)
	require.Equal(t, "zsh28", *p.GithubHandle)
	require.Equal(t, "https://cdn.example/a.png", *p.AvatarUrl)
}

func TestMergeDetailFillsGaps(t *testing.T) {
	detail := sampleDetail()
	p := testMerger().Merge(arena.ListProfile{}, detail)

	require.Equal(t, "@zsh28", p.Username)
	require.Equal(t, "Zee", *p.DisplayName)
}

func TestMergeLocationPairBeatsSinglePart(t *testing.T) {
	detail := sampleDetail()

	// a complete pair from detail beats a lone city from the list
	p := testMerger().Merge(arena.ListProfile{City: "Berlin"}, detail)
	require.Equal(t, "Nairobi, Kenya", *p.Location)

	// a complete pair from the list wins outright
	p = testMerger().Merge(arena.ListProfile{City: "Berlin", Country: "Germany"}, detail)
	require.Equal(t, "Berlin, Germany", *p.Location)

	// single parts are still better than nothing
	detail.ExtendedProfile.Country = ""
	p = testMerger().Merge(arena.ListProfile{}, detail)
	require.Equal(t, "Nairobi", *p.Location)
}

func TestDefaultCompanyFromPosition(t *testing.T) {
	require.Equal(t, "Acme", DefaultCompanyFromPosition("Engineer @ Acme"))
	require.Equal(t, "Acme", DefaultCompanyFromPosition("Engineer @Acme"))
	require.Equal(t, "Acme", DefaultCompanyFromPosition("Engineer at Acme"))
	require.Equal(t, "Acme Labs", DefaultCompanyFromPosition("intern at Acme Labs"))
	// no separator means the position itself is the best guess
	require.Equal(t, "Software Developer", DefaultCompanyFromPosition("Software Developer"))
	require.Equal(t, "", DefaultCompanyFromPosition(""))
	require.Equal(t, "", DefaultCompanyFromPosition("   "))
}
