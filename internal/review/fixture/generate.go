package fixture

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/replytree"
)

var (
	replyAuthors = []string{"John", "Sarah", "User123", "Buyer456", "ReviewExpert", "RealUser"}

	replyTemplates = []string{
		"Thanks for sharing, very helpful review!",
		"I bought the same product, experience is indeed good",
		"Where did you buy it?",
		"How is the quality, worth buying?",
		"I agree, this product is really great",
		"Is the price reasonable? Any promotional activities?",
		"How about the packaging? Is shipping fast?",
		"I think the cost performance is very high",
		"Are there other color options?",
		"Used it for a while, indeed as the review said",
	}

	followUpTemplates = []string{
		"After using for a week, overall satisfaction is still very high, recommend buying",
		"After long-term use, quality is indeed good, worth recommending",
		"Found some minor issues after a few days of use, but overall still satisfied",
		"Great value for money, good user experience, will repurchase",
		"Quality is stable, full-featured, meets expectations",
		"After comparison, this product indeed has advantages",
		"Good user experience, packaging is also exquisite",
		"Fast logistics, product quality also meets expectations",
	}
)

// ReadCSV returns one map per data row keyed by header. Rows shorter than the
// header are skipped.
func ReadCSV(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = clean(h)
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) < len(header) {
			continue
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			row[h] = clean(rec[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

// Generator turns raw review rows into a demo fixture, inventing the
// engagement data the export does not carry.
type Generator struct {
	rng   *rand.Rand
	now   time.Time
	start time.Time
}

func NewGenerator(seed uint64, now time.Time) *Generator {
	return &Generator{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:   now.UTC(),
		start: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (g *Generator) Generate(rows []map[string]string) model.Fixture {
	comments := make([]model.Comment, 0, len(rows))
	for i, row := range rows {
		comments = append(comments, g.comment(i, row))
	}
	return model.Fixture{
		Comments:    comments,
		LastUpdated: g.now,
	}
}

func (g *Generator) comment(i int, row map[string]string) model.Comment {
	title := first(row, "title", "Title", "summary", "Summary")
	if title == "" {
		title = fmt.Sprintf("Review %d", i+1)
	}
	if r := []rune(title); len(r) > 100 {
		title = string(r[:100])
	}
	body := first(row, "body", "Body", "content", "Content", "review", "Review")
	if body == "" {
		body = "This is a great review content."
	}
	reviewer := first(row, "reviewer_name", "Reviewer Name", "author", "Author")
	if reviewer == "" {
		reviewer = fmt.Sprintf("User%d", g.between(1000, 9999))
	}
	handle := first(row, "product_handle", "Product Handle")
	if handle == "" {
		handle = "default-product"
	}

	rating := g.between(3, 5)
	helpful := g.between(0, 50)
	c := model.Comment{
		ID:               int64(i + 1),
		Title:            title,
		Body:             body,
		ReviewerName:     reviewer,
		ProductHandle:    handle,
		Rating:           rating,
		HelpfulCount:     helpful,
		Likes:            g.between(0, 30),
		VerifiedPurchase: g.chance(0.8),
	}

	featuredP := 0.1
	if rating >= 4 && helpful > 10 {
		featuredP = 0.3
	}
	c.Featured = g.chance(featuredP)
	c.Timestamp = g.date()

	if g.chance(0.3) {
		c.Images = g.images()
	}
	if g.chance(0.4) {
		c.Replies = g.replies()
	}
	if g.chance(0.2) {
		c.HasFollowUp = true
		c.FollowUp = &model.FollowUp{
			Content:   g.pick(followUpTemplates),
			Timestamp: g.date(),
			DaysLater: g.between(3, 30),
		}
	}
	return c
}

func (g *Generator) images() []model.Image {
	n := g.between(0, 8)
	if n == 0 {
		return nil
	}
	out := make([]model.Image, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Image{
			URL: fmt.Sprintf("https://picsum.photos/400/400?random=%d", g.between(1, 1000)),
			Alt: fmt.Sprintf("User uploaded image %d", i+1),
		})
	}
	return out
}

// replies nests roughly a third of the generated replies under an earlier one.
func (g *Generator) replies() []model.Reply {
	n := g.between(0, 5)
	if n == 0 {
		return nil
	}
	seq := replytree.NewSequence(nil)
	out := make([]model.Reply, 0, n)
	for i := 0; i < n; i++ {
		r := model.Reply{
			ID:        seq.Next(),
			Author:    g.pick(replyAuthors),
			Content:   g.pick(replyTemplates),
			Timestamp: g.date(),
			Likes:     g.between(0, 20),
		}
		if g.chance(0.3) && len(out) > 0 {
			r.ParentID = out[g.rng.IntN(len(out))].ID
		}
		out = append(out, r)
	}
	return out
}

func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *Generator) chance(p float64) bool {
	return g.rng.Float64() < p
}

func (g *Generator) pick(from []string) string {
	return from[g.rng.IntN(len(from))]
}

func (g *Generator) date() time.Time {
	span := g.now.Sub(g.start)
	if span <= 0 {
		return g.start
	}
	return g.start.Add(time.Duration(g.rng.Int64N(int64(span)))).Truncate(time.Millisecond)
}

func first(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := row[k]; v != "" {
			return v
		}
	}
	return ""
}
