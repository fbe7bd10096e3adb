// Package query filters, orders and pages a comment collection.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
)

var ErrInvalidQuery = errors.New("invalid query")

type Filter string

const (
	FilterAll        Filter = "all"
	FilterFeatured   Filter = "featured"
	FilterVerified   Filter = "verified"
	FilterHighRating Filter = "high_rating"
)

type Sort string

const (
	SortHelpful  Sort = "helpful"
	SortRecent   Sort = "recent"
	SortRating   Sort = "rating"
	SortFeatured Sort = "featured"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterFeatured, FilterVerified, FilterHighRating:
		return f, nil
	}
	return "", fmt.Errorf("%w: filter %q", ErrInvalidQuery, s)
}

func ParseSort(s string) (Sort, error) {
	switch o := Sort(s); o {
	case "":
		return SortFeatured, nil
	case SortHelpful, SortRecent, SortRating, SortFeatured:
		return o, nil
	}
	return "", fmt.Errorf("%w: sort %q", ErrInvalidQuery, s)
}

type Query struct {
	Text   string `json:"text"`
	Filter Filter `json:"filter"`
	Sort   Sort   `json:"sort"`
}

func Default() Query {
	return Query{Filter: FilterAll, Sort: SortFeatured}
}

// Evaluate applies the text match, then the category filter, then the sort.
// source is not modified; the result is a fresh slice.
func Evaluate(source []model.Comment, q Query) []model.Comment {
	out := make([]model.Comment, 0, len(source))

	text := strings.ToLower(strings.TrimSpace(q.Text))
	for _, c := range source {
		if text != "" && !matches(c, text) {
			continue
		}
		if !keep(c, q.Filter) {
			continue
		}
		out = append(out, c)
	}

	if cmp := comparator(q.Sort); cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

func matches(c model.Comment, text string) bool {
	return strings.Contains(strings.ToLower(c.Title), text) ||
		strings.Contains(strings.ToLower(c.Body), text) ||
		strings.Contains(strings.ToLower(c.ReviewerName), text)
}

func keep(c model.Comment, f Filter) bool {
	switch f {
	case FilterFeatured:
		return c.Featured
	case FilterVerified:
		return c.VerifiedPurchase
	case FilterHighRating:
		return c.Rating >= 4
	}
	return true
}

// comparators order descending; ties keep their source order.
func comparator(s Sort) func(a, b model.Comment) int {
	switch s {
	case SortHelpful:
		return byHelpful
	case SortRecent:
		return func(a, b model.Comment) int {
			return b.Timestamp.Compare(a.Timestamp)
		}
	case SortRating:
		return func(a, b model.Comment) int {
			return b.Rating - a.Rating
		}
	case SortFeatured:
		return func(a, b model.Comment) int {
			switch {
			case a.Featured && !b.Featured:
				return -1
			case !a.Featured && b.Featured:
				return 1
			}
			return byHelpful(a, b)
		}
	}
	return nil
}

func byHelpful(a, b model.Comment) int {
	return b.HelpfulCount - a.HelpfulCount
}
