package usecase

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"publish-automation/domain/model"
)

var (
	brTagRe          = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTagRe        = regexp.MustCompile(`<[^>]+>`)
	blankRunRe       = regexp.MustCompile(`\n{3,}`)
	sourceBacklinkRe = regexp.MustCompile(`\*\[去豆瓣查看原网页\]\([^)]*\)\*`)
)

const excerptLines = 24

// PostBodyBuilder composes the plain-text body sent to platforms from the
// post's markdown file: front matter stripped, HTML flattened, excerpted,
// with the canonical link appended.
type PostBodyBuilder struct {
	postsDir string
}

func NewPostBodyBuilder(postsDir string) *PostBodyBuilder {
	return &PostBodyBuilder{postsDir: postsDir}
}

func (b *PostBodyBuilder) Build(entry *model.QueueEntry) string {
	file := strings.TrimSpace(entry.File)
	if b.postsDir == "" || file == "" {
		return fallbackBody(entry)
	}
	raw, err := os.ReadFile(filepath.Join(b.postsDir, file))
	if err != nil {
		return fallbackBody(entry)
	}

	body := htmlToPlain(stripFrontMatter(string(raw)))
	body = strings.TrimSpace(sourceBacklinkRe.ReplaceAllString(body, ""))

	lines := make([]string, 0, excerptLines)
	for _, ln := range strings.Split(body, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		lines = append(lines, ln)
		if len(lines) == excerptLines {
			break
		}
	}
	return strings.Join(lines, "\n") + "\n\n原文链接：" + strings.TrimSpace(entry.URL)
}

func fallbackBody(entry *model.QueueEntry) string {
	return strings.TrimSpace(entry.Title) + "\n\n原文链接：" + strings.TrimSpace(entry.URL)
}

func stripFrontMatter(text string) string {
	if strings.HasPrefix(text, "---") {
		parts := strings.SplitN(text, "---", 3)
		if len(parts) == 3 {
			return strings.TrimSpace(parts[2])
		}
	}
	return strings.TrimSpace(text)
}

func htmlToPlain(text string) string {
	text = brTagRe.ReplaceAllString(text, "\n")
	text = htmlTagRe.ReplaceAllString(text, "")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
