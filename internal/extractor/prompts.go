package extractor

import (
	"fmt"
	"strings"
)

const listSystemPrompt = `You extract job listings from the HTML of a careers or job-board results page.
Return ONLY raw JSON, no markdown, in this shape:
{"jobs": [{"jobId": "", "title": "", "applicationUrl": "", "postedDate": "", "companyName": ""}], "numberOfPages": 0}

Rules:
- One entry per job posting visible on the page. Do not invent postings.
- applicationUrl is the absolute link to the job's detail page.
- postedDate is copied as written on the page (e.g. "3 days ago", "June 22, 2025").
- numberOfPages is the total page count shown by the pagination control, or 0 if none is shown.
- Use an empty string when a field is not present.`

var detailFields = []string{
	"jobId", "title", "description", "location", "country", "state", "city",
	"jobType", "salary", "skills", "experienceLevel", "currency", "applicationUrl",
	"benefits", "jobStatus", "responsibilities", "workSettings", "roleCategory",
	"qualifications", "companyLogo", "companyName", "minSalary", "maxSalary",
	"postedDate", "category",
}

// DefaultDomain is the topical allow-list the detail prompt restricts to.
const DefaultDomain = "Dynamics 365 or Power Platform"

func detailSystemPrompt(domain string) string {
	if domain == "" {
		domain = DefaultDomain
	}
	return fmt.Sprintf(`You extract one job posting from the HTML of its detail page.
Return ONLY a raw JSON object, no markdown, with these keys:
%s

Instructions:
- Only extract jobs related to %s. If the job is unrelated, return {}.
- Use full names for location abbreviations (e.g. "US" -> "United States", "NJ" -> "New Jersey").
- location, country, state, city: names only, no additional text.
- salary: if both annual and hourly rates are present, return the annual one. If only hourly is given, keep its frequency (e.g. "60 - 85 USD per hour"). If no salary is found, return "".
- minSalary, maxSalary: numbers, 0 when unknown.
- skills, benefits, responsibilities, qualifications: JSON arrays of short strings.
- jobType: one of "fullTime", "partTime", "contractToHire", "tempContract", "gigWork".
- experienceLevel: one of "beginner", "intermediate", "expert", "experienced".
- workSettings: one of "remote", "onSite", "hybrid".
- category: one of "developer", "consultant", "sales", "administrator", "architect", "analytics", "automation", "engineer", or "".
- roleCategory: infer from the title or context.
- postedDate: copied as written on the page.`, strings.Join(detailFields, ", "), domain)
}

func userPrompt(pageURL, html string) string {
	return fmt.Sprintf("Page URL: %s\n\nHTML:\n%s", pageURL, html)
}
