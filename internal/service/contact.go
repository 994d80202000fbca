package service

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "US"
)

var socialDomains = map[string]string{
	"instagram.com": "instagram",
	"facebook.com":  "facebook",
	"fb.com":        "facebook",
}

// ContactNormalizer cleans contact fields on proposals and shops. Cleaning is
// best effort: a value that cannot be normalized is dropped, not rejected.
// Only missing required fields fail validation.
type ContactNormalizer struct {
	DefaultRegion string
}

// NewContactNormalizer builds a normalizer with the given default phone region.
func NewContactNormalizer(defaultRegion string) *ContactNormalizer {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &ContactNormalizer{DefaultRegion: region}
}

// Phone returns the E.164 form of raw, or nil if it is not a valid number.
func (n *ContactNormalizer) Phone(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	number, err := phonenumbers.Parse(raw, n.DefaultRegion)
	if err != nil {
		return nil
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return nil
	}
	formatted := phonenumbers.Format(number, phonenumbers.E164)
	return &formatted
}

// Email lowercases and validates raw, folding the domain through IDNA. Returns
// nil if the address is malformed.
func (n *ContactNormalizer) Email(raw string) *string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailPattern.MatchString(email) {
		return nil
	}
	parts := strings.SplitN(email, "@", 2)
	if !isDomainValid(parts[1]) {
		return nil
	}
	ascii, err := idnaProfile.ToASCII(parts[1])
	if err != nil || ascii == "" {
		return nil
	}
	normalized := parts[0] + "@" + ascii
	return &normalized
}

// Website forces https and strips tracking parameters. Returns nil on an
// unparseable URL.
func (n *ContactNormalizer) Website(raw string) *string {
	u, err := sanitizeURL(raw)
	if err != nil {
		return nil
	}
	stripTracking(u)
	result := u.String()
	return &result
}

// Social validates that raw points at the expected network and returns the
// cleaned URL, or nil when the host does not match.
func (n *ContactNormalizer) Social(platform, raw string) *string {
	u, err := sanitizeURL(raw)
	if err != nil {
		return nil
	}
	hostPlatform, ok := hostMatchesSocial(u.Hostname())
	if !ok || hostPlatform != platform {
		return nil
	}
	stripTracking(u)
	result := u.String()
	return &result
}

func hostMatchesSocial(host string) (string, bool) {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "."))
	if host == "" {
		return "", false
	}
	for domain, platform := range socialDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return platform, true
		}
	}
	return "", false
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	u.Scheme = "https"
	return u, nil
}

func stripTracking(u *url.URL) {
	if u == nil {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
