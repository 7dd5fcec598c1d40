package arena

// ListProfile is the abbreviated profile shape returned by the paginated
// list endpoint. Fields the remote omits simply stay zero valued.
type ListProfile struct {
	UserId              int64    `json:"userId"`
	Username            string   `json:"username"`
	DisplayName         string   `json:"displayName"`
	City                string   `json:"city"`
	Country             string   `json:"country"`
	Languages           []string `json:"languages"`
	YourRoles           []string `json:"yourRoles"`
	IsUniversityStudent *bool    `json:"isUniversityStudent"`
	CurrentPosition     string   `json:"currentPosition"`
	AvatarUrl           string   `json:"avatarUrl"`
}

// ListPage is one page of the list endpoint.
type ListPage struct {
	Profiles []ListProfile `json:"profiles"`
	HasMore  bool          `json:"hasMore"`
	Offset   int           `json:"offset"`
}

// DetailProfile is the extended shape returned by the per-user endpoint.
type DetailProfile struct {
	Profile struct {
		Id           int64    `json:"id"`
		Username     string   `json:"username"`
		DisplayName  string   `json:"displayName"`
		AccountRoles []string `json:"accountRoles"`
		Batches      []string `json:"batches"`
	} `json:"profile"`
	ExtendedProfile struct {
		City                string   `json:"city"`
		Country             string   `json:"country"`
		Languages           []string `json:"languages"`
		Skills              []string `json:"skills"`
		JobRoles            []string `json:"jobRoles"`
		RolesLookingFor     []string `json:"rolesLookingFor"`
		InterestedUseCases  []string `json:"interestedUseCases"`
		IsUniversityStudent *bool    `json:"isUniversityStudent"`
		CurrentPosition     string   `json:"currentPosition"`
		LookingForCollab    *bool    `json:"lookingForCollab"`
		LookingToBuild      string   `json:"lookingToBuild"`
		About               string   `json:"about"`
		GithubHandle        string   `json:"githubHandle"`
		LinkedinHandle      string   `json:"linkedinHandle"`
		TwitterHandle       string   `json:"twitterHandle"`
		TelegramHandle      string   `json:"telegramHandle"`
		AvatarUrl           string   `json:"avatarUrl"`
	} `json:"extendedProfile"`
}
