// Package phone holds the country dialing table and country-aware phone
// validation and display formatting.
package phone

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// DefaultCountry is preselected in the contact form.
const DefaultCountry = "CA"

// Rule describes how phone numbers are entered and displayed for one country.
// Rules are immutable once the table is built.
type Rule struct {
	Code      string `json:"code"`
	DialCode  string `json:"dialCode"`
	Name      string `json:"name"`
	MinDigits int    `json:"minDigits"`
	MaxDigits int    `json:"maxDigits"`

	pattern *regexp.Regexp
	masks   []string // '#' marks a digit slot, ordered by slot count
}

// Matches reports whether a bare digit string fits the national numbering pattern.
func (r Rule) Matches(digits string) bool {
	return r.pattern != nil && r.pattern.MatchString(digits)
}

// Pattern returns the source of the national numbering pattern.
func (r Rule) Pattern() string {
	if r.pattern == nil {
		return ""
	}
	return r.pattern.String()
}

// Placeholder is a sample rendering of the mask for form hints.
func (r Rule) Placeholder() string {
	if len(r.masks) == 0 {
		return ""
	}
	return strings.ReplaceAll(r.masks[0], "#", "0")
}

type ruleSpec struct {
	code, dial, name string
	min, max         int
	pattern          string
	masks            []string
}

var specs = []ruleSpec{
	{"CA", "+1", "Canada", 10, 10, `^[2-9]\d{2}[2-9]\d{6}$`, []string{"(###) ###-####"}},
	{"US", "+1", "United States", 10, 10, `^[2-9]\d{2}[2-9]\d{6}$`, []string{"(###) ###-####"}},
	{"GB", "+44", "United Kingdom", 10, 10, `^[1-9]\d{9}$`, []string{"#### ######"}},
	{"AU", "+61", "Australia", 9, 9, `^[2-478]\d{8}$`, []string{"# #### ####"}},
	{"IN", "+91", "India", 10, 10, `^[6-9]\d{9}$`, []string{"##### #####"}},
	{"PH", "+63", "Philippines", 10, 10, `^9\d{9}$`, []string{"### ### ####"}},
	{"NG", "+234", "Nigeria", 10, 10, `^[789][01]\d{8}$`, []string{"### ### ####"}},
	{"DE", "+49", "Germany", 10, 11, `^[1-9]\d{9,10}$`, []string{"### #######", "#### #######"}},
	{"FR", "+33", "France", 9, 9, `^[1-9]\d{8}$`, []string{"# ## ## ## ##"}},
	{"MX", "+52", "Mexico", 10, 10, `^\d{10}$`, []string{"## #### ####"}},
	{"CN", "+86", "China", 11, 11, `^1[3-9]\d{9}$`, []string{"### #### ####"}},
}

var (
	table  map[string]Rule
	sorted []Rule
)

func init() {
	table = make(map[string]Rule, len(specs))
	for _, s := range specs {
		r := Rule{
			Code:      s.code,
			DialCode:  s.dial,
			Name:      s.name,
			MinDigits: s.min,
			MaxDigits: s.max,
			pattern:   regexp.MustCompile(s.pattern),
			masks:     append([]string(nil), s.masks...),
		}
		table[s.code] = r
		sorted = append(sorted, r)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
}

// CanonicalCode normalises a user supplied country code ("ca", " Us ") to
// its ISO 3166-1 alpha-2 form. It returns "" when the code is not a region.
func CanonicalCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return ""
	}
	canon := region.Canonicalize()
	return canon.String()
}

// Lookup returns the rule for a country code.
func Lookup(code string) (Rule, bool) {
	r, ok := table[CanonicalCode(code)]
	return r, ok
}

// MustLookup is Lookup for codes known at compile time.
func MustLookup(code string) Rule {
	r, ok := Lookup(code)
	if !ok {
		panic("phone: unknown country " + code)
	}
	return r
}

// Countries lists every rule ordered by display name.
func Countries() []Rule {
	return append([]Rule(nil), sorted...)
}
