// Package extract pulls candidate identity out of raw resume text and
// converts uploaded documents to plain text. Extraction is regex-first; the
// AI scorer's identity fields take precedence when present and these results
// fill the gaps.
package extract

import (
	"regexp"
	"sort"
	"strings"
)

// ContactInfo is the best-effort identity extracted from resume text.
type ContactInfo struct {
	Name  string
	Email string
	Phone string
}

var emailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	regexp.MustCompile(`(?i)E-?mail\s*:\s*([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`),
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[+]?[(]?[0-9]{3}[)]?[-\s.]?[0-9]{3}[-\s.]?[0-9]{4,6}`),
	regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{1,4}[-.\s]?\d{1,4}[-.\s]?\d{1,9}`),
	regexp.MustCompile(`\b\d{10}\b`),
}

// placeholder domains seen in resume templates; never a real contact.
var bogusDomains = []string{"example.com", "domain.com", "email.com", "test.com"}

var nonDigits = regexp.MustCompile(`[^\d+]`)

// Contact extracts name, email and phone from resume text.
func Contact(text string) ContactInfo {
	return ContactInfo{
		Name:  extractName(text),
		Email: extractEmail(text),
		Phone: extractPhone(text),
	}
}

func extractEmail(text string) string {
	seen := make(map[string]struct{})
	for _, pattern := range emailPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			email := match[0]
			if len(match) > 1 && match[1] != "" {
				email = match[1]
			}
			email = strings.ToLower(strings.TrimSpace(email))
			if !strings.Contains(email, "@") {
				continue
			}
			if bogus(email) {
				continue
			}
			seen[email] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return ""
	}

	emails := make([]string, 0, len(seen))
	for email := range seen {
		emails = append(emails, email)
	}

	// Prefer personal mailboxes over whatever else the template mentions.
	sort.Slice(emails, func(i, j int) bool {
		pi, pj := providerRank(emails[i]), providerRank(emails[j])
		if pi != pj {
			return pi < pj
		}
		if len(emails[i]) != len(emails[j]) {
			return len(emails[i]) < len(emails[j])
		}
		return emails[i] < emails[j]
	})
	return emails[0]
}

func providerRank(email string) int {
	switch {
	case strings.HasSuffix(email, "@gmail.com"):
		return 0
	case strings.HasSuffix(email, "@outlook.com"):
		return 1
	case strings.HasSuffix(email, "@yahoo.com"):
		return 2
	default:
		return 3
	}
}

func bogus(email string) bool {
	for _, domain := range bogusDomains {
		if strings.HasSuffix(email, "@"+domain) {
			return true
		}
	}
	return false
}

func extractPhone(text string) string {
	for _, pattern := range phonePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			digits := nonDigits.ReplaceAllString(match, "")
			if len(digits) >= 10 && len(digits) <= 15 {
				return strings.TrimSpace(match)
			}
		}
	}
	return ""
}

var tenDigits = regexp.MustCompile(`\d{10}`)

var nameSkipWords = []string{"resume", "cv", "curriculum vitae", "profile", "contact", "email", "phone"}

// extractName scans the top of the resume for a line that looks like a
// person's name: two to four capitalized words with no contact info.
func extractName(text string) string {
	lines := make([]string, 0, 10)
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
		if len(lines) == 10 {
			break
		}
	}

	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(line, "@") || tenDigits.MatchString(line) {
			continue
		}
		if containsAny(lower, nameSkipWords) {
			continue
		}

		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 {
			continue
		}
		if allCapitalized(words) {
			return truncate(line, 50)
		}
	}

	if len(lines) > 0 {
		return truncate(lines[0], 50)
	}
	return "Unknown"
}

func containsAny(s string, words []string) bool {
	for _, word := range words {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}

func allCapitalized(words []string) bool {
	for _, word := range words {
		runes := []rune(word)
		if len(runes) < 2 {
			return false
		}
		first := runes[0]
		if first < 'A' || first > 'Z' {
			return false
		}
	}
	return true
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
