package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FormField is one name/value pair of a site's result form.
type FormField struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// SiteProfile describes a site that needs a form submission instead of a
// plain GET. Profiles are matched against the target URL in order.
type SiteProfile struct {
	// Name identifies the profile in logs.
	Name string `yaml:"name"`

	// Match is a case-insensitive substring of the target URL.
	Match string `yaml:"match"`

	// ErrorTag prefixes fault statuses: "<ErrorTag> scraping error: ...".
	ErrorTag string `yaml:"error_tag"`

	// FormFields are posted in order, before the search field.
	FormFields []FormField `yaml:"form_fields"`

	// SearchField carries the user's search term (e.g. a roll number).
	SearchField string `yaml:"search_field"`

	// Submit is posted last, marking the form as submitted.
	Submit FormField `yaml:"submit"`

	// ResultSelector locates the success value in the response.
	ResultSelector string `yaml:"result_selector"`

	// ResultPrefix is prepended to the trimmed success value.
	ResultPrefix string `yaml:"result_prefix"`

	// MessageSelector locates a site-reported message (e.g. invalid roll number).
	MessageSelector string `yaml:"message_selector"`

	// NotFoundMessage is returned when neither element has text.
	NotFoundMessage string `yaml:"not_found_message"`
}

type sitesFile struct {
	Sites []SiteProfile `yaml:"sites"`
}

// DefaultGNDUProfile returns the built-in profile for the GNDU exam result
// page. The exam-cycle values can be overridden through WATCH_GNDU_* vars.
func DefaultGNDUProfile() SiteProfile {
	return SiteProfile{
		Name:     "gndu",
		Match:    "gndu",
		ErrorTag: "GNDU",
		FormFields: []FormField{
			{Name: "ddlYear", Value: envOr("WATCH_GNDU_YEAR", "2025")},
			{Name: "ddlMonth", Value: envOr("WATCH_GNDU_MONTH", "May")},
			{Name: "ddlSem", Value: envOr("WATCH_GNDU_SEMESTER", "4")},
			{Name: "ddlCourseType", Value: envOr("WATCH_GNDU_COURSE_TYPE", "CBES")},
			{Name: "ddlCourse", Value: envOr("WATCH_GNDU_COURSE", "1702")},
		},
		SearchField:     "txtRollNo",
		Submit:          FormField{Name: "btnSubmit", Value: "Submit"},
		ResultSelector:  "span#lblSGPA",
		ResultPrefix:    "Pass - SGPA: ",
		MessageSelector: "span#lblMsg",
		NotFoundMessage: "No result found on GNDU page",
	}
}

// LoadSites reads site profiles from a YAML file of the form:
//
//	sites:
//	  - name: gndu
//	    match: gndu
//	    ...
func LoadSites(path string) ([]SiteProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read sites file: %w", err)
	}
	return ParseSites(data)
}

// ParseSites decodes and validates YAML site profiles.
func ParseSites(data []byte) ([]SiteProfile, error) {
	var f sitesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse sites yaml: %w", err)
	}
	for i := range f.Sites {
		p := &f.Sites[i]
		if strings.TrimSpace(p.Match) == "" {
			return nil, fmt.Errorf("config: site %d (%q): match is required", i, p.Name)
		}
		if p.SearchField == "" {
			return nil, fmt.Errorf("config: site %d (%q): search_field is required", i, p.Name)
		}
		if p.ResultSelector == "" {
			return nil, fmt.Errorf("config: site %d (%q): result_selector is required", i, p.Name)
		}
		if p.Name == "" {
			p.Name = p.Match
		}
		if p.ErrorTag == "" {
			p.ErrorTag = strings.ToUpper(p.Name)
		}
		if p.NotFoundMessage == "" {
			p.NotFoundMessage = "No result found on " + p.ErrorTag + " page"
		}
	}
	return f.Sites, nil
}
