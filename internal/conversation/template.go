package conversation

import (
	"regexp"
	"strings"

	"voicereach/internal/leads"
)

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z]+)\}`)

// RenderScript substitutes lead fields into a campaign script template.
// Supported placeholders: {firstName}, {lastName}, {fullName}, {company},
// {jobTitle}. Unknown placeholders render as empty string, never literally.
func RenderScript(template string, lead leads.Lead) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		key := strings.Trim(m, "{}")
		switch key {
		case "firstName":
			return lead.FirstName
		case "lastName":
			return lead.LastName
		case "fullName":
			return lead.FullName()
		case "company":
			return lead.Company
		case "jobTitle":
			return lead.JobTitle
		default:
			return ""
		}
	})
}
