package query

import "github.com/MyNameIsWhaaat/reviewtree/internal/review/model"

const DefaultPageSize = 6

// Pager tracks how much of a result list is revealed.
type Pager struct {
	size    int
	visible int
}

func NewPager(size int) *Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pager{size: size, visible: size}
}

// Reset goes back to the first page of a result of length total.
func (p *Pager) Reset(total int) {
	p.visible = min(p.size, total)
}

// More reveals one more page, clamped to total.
func (p *Pager) More(total int) {
	p.visible = min(p.visible+p.size, total)
}

func (p *Pager) Visible() int {
	return p.visible
}

func (p *Pager) Size() int {
	return p.size
}

func (p *Pager) HasMore(total int) bool {
	return p.visible < total
}

// Window returns the revealed prefix of result.
func Window(result []model.Comment, p *Pager) []model.Comment {
	n := min(p.Visible(), len(result))
	return result[:n:n]
}
