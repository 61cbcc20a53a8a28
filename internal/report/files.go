package report

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

func WriteReportFile(content, outputDir, stem string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, sanitizeFilename(stem)+".md")
	return path, os.WriteFile(path, []byte(content), 0644)
}

// WriteEmailDraftFile writes the report as a multipart plain/HTML .eml draft.
func WriteEmailDraftFile(body, outputDir, stem, subject string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, sanitizeFilename(stem)+".eml")
	return path, os.WriteFile(path, []byte(buildEML(subject, body)), 0644)
}

func buildEML(subject, body string) string {
	const boundary = "deskinsight-alt"
	headers := []string{
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", boundary),
		fmt.Sprintf("Subject: %s", subject),
	}
	plain := normalizeCRLF(markdownToEmailPlain(body))
	htmlBody := markdownToEmailHTML(body)

	var out strings.Builder
	out.WriteString(strings.Join(headers, "\r\n"))
	out.WriteString("\r\n\r\n")
	out.WriteString("--" + boundary + "\r\n")
	out.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	out.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	out.WriteString(plain)
	if !strings.HasSuffix(plain, "\r\n") {
		out.WriteString("\r\n")
	}
	out.WriteString("\r\n--" + boundary + "\r\n")
	out.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	out.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	out.WriteString(htmlBody)
	out.WriteString("\r\n--" + boundary + "--\r\n")
	return out.String()
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	return replacer.Replace(s)
}

func normalizeCRLF(s string) string {
	normalized := strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(normalized, "\n", "\r\n")
}

var (
	imageRe     = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)]+)\)$`)
	separatorRe = regexp.MustCompile(`^\|(\s*:?-+:?\s*\|)+$`)
)

// markdownToEmailPlain strips heading markers, table separator rows and image
// links down to their captions.
func markdownToEmailPlain(body string) string {
	var out []string
	prevBlank := false
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#"):
			line = strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
		case separatorRe.MatchString(trimmed):
			continue
		case imageRe.MatchString(trimmed):
			line = "[" + imageRe.FindStringSubmatch(trimmed)[1] + "]"
		}
		if strings.TrimSpace(line) == "" {
			if prevBlank {
				continue
			}
			prevBlank = true
			out = append(out, "")
			continue
		}
		prevBlank = false
		out = append(out, line)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n"
}

func markdownToEmailHTML(body string) string {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	var b strings.Builder
	b.WriteString(`<html><body style="font-family: Calibri, Arial, sans-serif; font-size: 11pt; color: #1f1f1f; line-height: 1.35;">`)

	inTable, headerDone := false, false
	closeTable := func() {
		if inTable {
			b.WriteString(`</table>`)
			inTable, headerDone = false, false
		}
	}

	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		switch {
		case trimmed == "":
			closeTable()
			b.WriteString(`<div style="height: 10px;"></div>`)
		case strings.HasPrefix(trimmed, "|"):
			if separatorRe.MatchString(trimmed) {
				headerDone = true
				continue
			}
			if !inTable {
				b.WriteString(`<table style="border-collapse: collapse;">`)
				inTable = true
			}
			cell := "td"
			if !headerDone {
				cell = "th"
			}
			b.WriteString(`<tr>`)
			for _, c := range strings.Split(strings.Trim(trimmed, "|"), "|") {
				b.WriteString(`<` + cell + ` style="border: 1px solid #999; padding: 2px 6px;">` + html.EscapeString(strings.TrimSpace(c)) + `</` + cell + `>`)
			}
			b.WriteString(`</tr>`)
		case strings.HasPrefix(trimmed, "#"):
			closeTable()
			text := html.EscapeString(strings.TrimSpace(strings.TrimLeft(trimmed, "# ")))
			b.WriteString(`<div style="font-weight: 700; margin: 12px 0 6px 0;">` + text + `</div>`)
		case imageRe.MatchString(trimmed):
			closeTable()
			m := imageRe.FindStringSubmatch(trimmed)
			b.WriteString(`<div style="margin: 2px 0;"><img alt="` + html.EscapeString(m[1]) + `" src="` + html.EscapeString(m[2]) + `"></div>`)
		default:
			closeTable()
			b.WriteString(`<div style="margin: 2px 0;">` + html.EscapeString(trimmed) + `</div>`)
		}
	}
	closeTable()
	b.WriteString(`</body></html>`)
	return b.String()
}
