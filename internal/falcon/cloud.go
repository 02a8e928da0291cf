package falcon

import (
	"fmt"
	"strings"
)

// Cloud is a Falcon cloud region short name.
type Cloud string

const (
	CloudUS1    Cloud = "us-1"
	CloudUS2    Cloud = "us-2"
	CloudEU1    Cloud = "eu-1"
	CloudUSGov1 Cloud = "us-gov-1"
	CloudUSGov2 Cloud = "us-gov-2"
)

var cloudBaseURLs = map[Cloud]string{
	CloudUS1:    "https://api.crowdstrike.com",
	CloudUS2:    "https://api.us-2.crowdstrike.com",
	CloudEU1:    "https://api.eu-1.crowdstrike.com",
	CloudUSGov1: "https://api.laggar.gcw.crowdstrike.com",
	CloudUSGov2: "https://api.us-gov-2.crowdstrike.mil",
}

// ParseCloud accepts the short region names in any case. Empty means us-1.
func ParseCloud(s string) (Cloud, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CloudUS1, nil
	}
	c := Cloud(strings.ReplaceAll(s, "_", "-"))
	if _, ok := cloudBaseURLs[c]; !ok {
		return "", fmt.Errorf("unknown falcon cloud %q", s)
	}
	return c, nil
}

// BaseURL returns the API host for the region.
func (c Cloud) BaseURL() string {
	if u, ok := cloudBaseURLs[c]; ok {
		return u
	}
	return cloudBaseURLs[CloudUS1]
}
