package models

import "strings"

// StatusKind classifies the outcome of a scrape.
type StatusKind int

const (
	// StatusSuccess means a value was extracted from the page.
	StatusSuccess StatusKind = iota
	// StatusNotFound is a clean miss: the page loaded but held nothing matching.
	StatusNotFound
	// StatusSiteError is a message the site itself reported (e.g. invalid roll number).
	StatusSiteError
	// StatusTransportFault means the fetch or parse failed.
	StatusTransportFault
)

func (k StatusKind) String() string {
	switch k {
	case StatusSuccess:
		return "success"
	case StatusNotFound:
		return "not_found"
	case StatusSiteError:
		return "site_error"
	case StatusTransportFault:
		return "transport_fault"
	default:
		return "unknown"
	}
}

// Status is the typed result of one scrape. String renders the human-readable
// status line that is persisted and diffed.
type Status struct {
	Kind StatusKind
	// Text is the rendered line for non-fault kinds and the fault detail
	// for StatusTransportFault.
	Text string
	// Tag names the extractor that produced a fault ("GNDU", "Generic").
	// Empty for faults raised outside an extractor.
	Tag string
}

// Success builds a StatusSuccess.
func Success(text string) Status { return Status{Kind: StatusSuccess, Text: text} }

// NotFound builds a StatusNotFound sentinel.
func NotFound(text string) Status { return Status{Kind: StatusNotFound, Text: text} }

// SiteError builds a StatusSiteError carrying the site's own message.
func SiteError(text string) Status { return Status{Kind: StatusSiteError, Text: text} }

// Fault builds a StatusTransportFault tagged with the failing extractor.
func Fault(tag string, err error) Status {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	return Status{Kind: StatusTransportFault, Text: detail, Tag: tag}
}

// IsFault reports whether the scrape failed.
func (s Status) IsFault() bool { return s.Kind == StatusTransportFault }

// String renders the status line. It is never empty.
func (s Status) String() string {
	if s.Kind == StatusTransportFault {
		if s.Tag == "" {
			return "Error: " + s.Text
		}
		return s.Tag + " scraping error: " + s.Text
	}
	if strings.TrimSpace(s.Text) == "" {
		return "No content"
	}
	return s.Text
}
