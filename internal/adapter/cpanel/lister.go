package cpanel

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Ning0612/cptrash/internal/domain"
	"github.com/Ning0612/cptrash/internal/logger"
)

// folderRule decides whether a listing row is a folder
type folderRule struct {
	name  string
	match func(row *goquery.Selection) bool
}

// folderRules 依序判斷，第一個符合的規則決定為資料夾
var folderRules = []folderRule{
	{name: "folder-icon", match: func(row *goquery.Selection) bool {
		return row.Find(SelectorIcon).Length() > 0
	}},
	{name: "mimetype-column", match: func(row *goquery.Selection) bool {
		return strings.Contains(row.Find(SelectorMimeCell).Text(), "directory")
	}},
}

// List reads the current listing. With retryOnEmpty an empty result is
// re-read a few times, since "empty" and "still loading" look the same.
func (v *View) List(ctx context.Context, retryOnEmpty bool) []domain.Entry {
	if !sleep(ctx, v.timing.ListDelay) {
		return nil
	}

	entries := v.snapshotEntries(ctx)
	if len(entries) > 0 || !retryOnEmpty {
		return entries
	}

	for attempt := 1; attempt <= v.timing.EmptyRetries; attempt++ {
		if !sleep(ctx, v.timing.EmptyRetryDelay) {
			return nil
		}
		entries = v.snapshotEntries(ctx)
		if len(entries) > 0 {
			logger.Get().Debug("listing appeared after retry", "attempt", attempt, "entries", len(entries))
			return entries
		}
	}

	return entries
}

func (v *View) snapshotEntries(ctx context.Context) []domain.Entry {
	var markup string
	if err := v.page.Call(ctx, snapshotScript, &markup, SelectorListing); err != nil {
		logger.Get().Debug("listing snapshot failed", "error", err)
		return nil
	}
	if markup == "" {
		return nil
	}

	entries, err := ParseListing(markup)
	if err != nil {
		logger.Get().Debug("listing parse failed", "error", err)
		return nil
	}
	return entries
}

// ParseListing extracts entries from the outer HTML of the listing container
func ParseListing(markup string) ([]domain.Entry, error) {
	// 表格外的 tbody/tr/td 會被 HTML5 parser 丟棄，先包一層 table
	if !strings.HasPrefix(strings.TrimSpace(markup), "<table") {
		markup = "<table>" + markup + "</table>"
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}

	var entries []domain.Entry
	doc.Find("tr.yui-dt-rec").Each(func(_ int, row *goquery.Selection) {
		name := rowName(row)
		if name == "" || name == "." || name == ".." {
			return
		}

		kind := domain.KindFile
		for _, rule := range folderRules {
			if rule.match(row) {
				kind = domain.KindFolder
				break
			}
		}
		entries = append(entries, domain.Entry{Name: name, Kind: kind})
	})

	return entries, nil
}

func rowName(row *goquery.Selection) string {
	span := row.Find(SelectorName).First()
	if span.Length() == 0 {
		return ""
	}
	if title, ok := span.Attr("title"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(span.Text())
}
