package scraper

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	"github.com/Verdenroz/buff-ai/internal/domain/post"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

const (
	profileURL   = "https://truthsocial.com/@"
	scrollStep   = 800
	scrollPause  = 2 * time.Second
	extraScroll  = 1200 // used once the page stops moving
	firstLoadMax = 30 * time.Second
)

// TruthSocial scrolls a Truth Social profile in headless Chrome and collects
// posts back to the lookback cutoff
type TruthSocial struct {
	cfg config.ScraperConfig
	log *logger.Logger
	now func() time.Time
}

// NewTruthSocial creates a scraper for the configured handle
func NewTruthSocial(cfg config.ScraperConfig) *TruthSocial {
	return &TruthSocial{
		cfg: cfg,
		log: logger.Get().With("component", "scraper", "handle", cfg.Handle),
		now: time.Now,
	}
}

// Scrape returns the collected posts, newest first
func (s *TruthSocial) Scrape(ctx context.Context) ([]post.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.WindowSize(1200, 2000),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	loadCtx, cancelLoad := context.WithTimeout(bctx, firstLoadMax)
	err := chromedp.Run(loadCtx,
		chromedp.Navigate(profileURL+s.cfg.Handle),
		chromedp.WaitVisible("div[data-index]", chromedp.ByQuery),
	)
	cancelLoad()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "load profile %s: %v", s.cfg.Handle, err)
	}

	collector := newCollector(s.now().Add(-s.cfg.Lookback), s.cfg.MaxEmptyScrolls)
	var lastOffset float64 = -1

	for !collector.done() {
		var html string
		if err := chromedp.Run(bctx, chromedp.OuterHTML("body", &html, chromedp.ByQuery)); err != nil {
			if ctx.Err() != nil {
				break
			}
			s.log.Warnf("read timeline: %v", err)
			collector.emptyScroll()
			continue
		}

		entries, err := ParseTimeline(html, s.cfg.Handle, time.Local)
		if err != nil {
			return nil, err
		}
		added := collector.add(entries)

		var offset float64
		if err := chromedp.Run(bctx,
			chromedp.Evaluate(scrollScript(scrollStep), &offset),
			chromedp.Sleep(scrollPause),
		); err != nil {
			if ctx.Err() != nil {
				break
			}
			s.log.Warnf("scroll timeline: %v", err)
		}

		switch {
		case added > 0:
			collector.reset()
		case offset == lastOffset:
			collector.emptyScroll()
			if collector.empties >= 3 {
				_ = chromedp.Run(bctx, chromedp.Evaluate(scrollScript(extraScroll), &offset), chromedp.Sleep(scrollPause))
			}
		}
		lastOffset = offset
	}

	posts := collector.posts(s.cfg.Author)
	s.log.Infof("scraped %d posts (cutoff reached: %v)", len(posts), collector.reachedCutoff)
	return posts, nil
}

func scrollScript(px int) string {
	return fmt.Sprintf("window.scrollBy(0, %d); window.pageYOffset", px)
}

// collector accumulates timeline entries across scrolls
type collector struct {
	cutoff        time.Time
	maxEmpty      int
	seen          map[string]Entry
	empties       int
	reachedCutoff bool
}

func newCollector(cutoff time.Time, maxEmpty int) *collector {
	if maxEmpty <= 0 {
		maxEmpty = 10
	}
	return &collector{cutoff: cutoff, maxEmpty: maxEmpty, seen: make(map[string]Entry)}
}

// add records unseen entries in page order and returns how many were new.
// An entry older than the cutoff ends the scrape.
func (c *collector) add(entries []Entry) int {
	added := 0
	for _, e := range entries {
		if _, ok := c.seen[e.Index]; ok {
			continue
		}
		if e.Time.Before(c.cutoff) {
			c.reachedCutoff = true
			break
		}
		c.seen[e.Index] = e
		added++
	}
	return added
}

func (c *collector) emptyScroll() { c.empties++ }
func (c *collector) reset()       { c.empties = 0 }

func (c *collector) done() bool {
	return c.reachedCutoff || c.empties >= c.maxEmpty
}

func (c *collector) posts(author string) []post.Post {
	out := make([]post.Post, 0, len(c.seen))
	for _, e := range c.seen {
		out = append(out, post.Post{
			Author:  author,
			Content: e.Content,
			Date:    e.Time.Unix(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}
