package scraper

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// TimestampLayout is how the timeline renders post times in the time element title
const TimestampLayout = "Jan 2, 2006, 3:04 PM"

// Entry is one post found on a rendered timeline
type Entry struct {
	Index    string // virtual list position, stable while scrolling
	StatusID string
	Content  string
	Time     time.Time
}

// ParseTimeline extracts the posts written by handle (without the @) from
// rendered timeline HTML. Reposts, replies by others and entries without
// text or a parsable timestamp are skipped.
func ParseTimeline(html, handle string, loc *time.Location) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(err, "parse timeline html")
	}

	want := "@" + strings.TrimPrefix(handle, "@")
	var entries []Entry

	doc.Find("div[data-index]").Each(func(_ int, item *goquery.Selection) {
		index, _ := item.Attr("data-index")
		if index == "" {
			return
		}

		wrapper := item.Find("div.status__wrapper[data-id]").First()
		if wrapper.Length() == 0 {
			return
		}
		statusID, _ := wrapper.Attr("data-id")

		if strings.TrimSpace(wrapper.Find("p.font-normal").First().Text()) != want {
			return
		}

		content := strings.TrimSpace(wrapper.Find("p[lang]").First().Text())
		if content == "" {
			return
		}

		title, ok := wrapper.Find("time").First().Attr("title")
		if !ok || title == "" {
			return
		}
		ts, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(title), loc)
		if err != nil {
			return
		}

		entries = append(entries, Entry{
			Index:    index,
			StatusID: statusID,
			Content:  content,
			Time:     ts,
		})
	})

	return entries, nil
}
