package utils

import (
	"math"

	"gorm.io/gorm"
)

// Pagination describes one page of a query result.
type Pagination struct {
	Page    int
	PerPage int
	Total   int64
	Pages   int
}

func NewPagination(page, perPage int, total int64) *Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	return &Pagination{
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   int(math.Ceil(float64(total) / float64(perPage))),
	}
}

// Paginate counts query, then loads the requested page into dest.
// query must have a model set and carry only filters; ordering and preloads
// go in scopes, which are applied to the page fetch but not to the count.
func Paginate(query *gorm.DB, page, perPage int, dest interface{}, scopes ...func(*gorm.DB) *gorm.DB) (*Pagination, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	p := NewPagination(page, perPage, total)
	if err := query.Session(&gorm.Session{}).Scopes(scopes...).Offset(p.Offset()).Limit(p.PerPage).Find(dest).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func (p *Pagination) HasPrev() bool {
	return p.Page > 1
}

func (p *Pagination) HasNext() bool {
	return p.Page < p.Pages
}

func (p *Pagination) PrevNum() int {
	return p.Page - 1
}

func (p *Pagination) NextNum() int {
	return p.Page + 1
}

// OutOfRange reports a page past the end; page 1 of an empty result is fine.
func (p *Pagination) OutOfRange() bool {
	return p.Page > 1 && p.Page > p.Pages
}

// IterPages lists page numbers for a pager. Runs of skipped pages are
// represented by a single 0.
func (p *Pagination) IterPages(leftEdge, leftCurrent, rightCurrent, rightEdge int) []int {
	var pages []int
	last := 0
	for num := 1; num <= p.Pages; num++ {
		if num <= leftEdge ||
			(num > p.Page-leftCurrent-1 && num < p.Page+rightCurrent) ||
			num > p.Pages-rightEdge {
			if last+1 != num {
				pages = append(pages, 0)
			}
			pages = append(pages, num)
			last = num
		}
	}
	return pages
}

// PagerPages is IterPages with the layout used by the templates.
func (p *Pagination) PagerPages() []int {
	return p.IterPages(1, 1, 2, 1)
}
