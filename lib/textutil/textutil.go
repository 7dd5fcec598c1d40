package textutil

import "strings"

// NormalizeUsername trims whitespace and guarantees the leading @ marker
// the profile directory displays usernames with.
func NormalizeUsername(name string) string {
	name = strings.Trim(name, " \n\t")
	name = strings.TrimPrefix(name, "@")
	if name == "" {
		return ""
	}
	return "@" + name
}

// BareUsername strips the @ marker for use in urls and api parameters.
func BareUsername(name string) string {
	return strings.TrimPrefix(strings.Trim(name, " \n\t"), "@")
}

// JoinLocation combines a city and country into a single display string.
// Either part may be empty.
func JoinLocation(city, country string) string {
	city = strings.Trim(city, " \n\t")
	country = strings.Trim(country, " \n\t")
	if city == "" {
		return country
	}
	if country == "" {
		return city
	}
	return city + ", " + country
}
