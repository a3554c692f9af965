package table

import (
	"net/url"

	"github.com/mboutique/backoffice/internal/core/descriptor"
	"github.com/mboutique/backoffice/internal/core/domain"
)

// PageEvent asks the host for another page. Page is 1-based.
type PageEvent struct {
	Page int
	Size int
}

// SortEvent asks the host for another ordering. An empty Direction clears it.
type SortEvent struct {
	Key       string
	Direction domain.SortOrder
}

// Apply returns a copy of cur moved to the requested page.
func (e PageEvent) Apply(cur domain.Pagination) domain.Pagination {
	cur.Page, cur.Limit = e.Page, e.Size
	return cur
}

// Apply returns a copy of cur with the requested ordering, back on the first
// page.
func (e SortEvent) Apply(cur domain.Pagination) domain.Pagination {
	cur.Page = 0
	if e.Direction == "" {
		cur.Sort, cur.Order = "", ""
		return cur
	}
	cur.Sort, cur.Order = e.Key, e.Direction
	return cur
}

type HeaderView struct {
	Key      string
	Label    string
	Width    string
	Align    descriptor.Align
	Sortable bool
	SortDir  domain.SortOrder
	SortHref string
}

type CellView struct {
	Text  string
	Class string
	Align descriptor.Align
}

type ActionView struct {
	Name  string
	Label string
	Icon  string
	Color string
	Href  string
}

type RowView struct {
	ID      string
	Href    string
	Cells   []CellView
	Actions []ActionView
}

type PagerView struct {
	Page     int
	Pages    int
	Total    int
	PrevHref string
	NextHref string
}

// View is the render model of a table.
type View struct {
	Headers      []HeaderView
	Rows         []RowView
	Clickable    bool
	ShowActions  bool
	Loading      bool
	Empty        bool
	EmptyMessage string
	Pager        *PagerView
}

// Links carries the addresses the view points at. Base is the list page; row
// clicks go to Base/click and actions to Base/actions/{name}.
type Links struct {
	Base    string
	Current domain.Pagination
}

func (l Links) list(p domain.Pagination) string {
	q := url.Values{}
	p.Encode(q)
	if len(q) == 0 {
		return l.Base
	}
	return l.Base + "?" + q.Encode()
}

func (l Links) click(id string) string {
	return l.Base + "/click?" + url.Values{"id": {id}}.Encode()
}

func (l Links) action(name, id string) string {
	return l.Base + "/actions/" + url.PathEscape(name) + "?" + url.Values{"id": {id}}.Encode()
}

// View builds the render model.
func (t *Table) View(links Links) View {
	cols := t.VisibleColumns()
	v := View{
		Clickable:    t.Clickable(),
		ShowActions:  t.cfg.ShowActions,
		Loading:      t.cfg.Loading,
		Empty:        len(t.rows) == 0,
		EmptyMessage: t.EmptyMessage(),
	}

	for _, c := range cols {
		h := HeaderView{Key: c.Key, Label: c.Label, Width: c.Width, Align: align(c), Sortable: c.Sortable}
		if c.Sortable {
			next := domain.OrderAsc
			if links.Current.Sort == c.Key {
				h.SortDir = links.Current.Order
				switch links.Current.Order {
				case domain.OrderAsc:
					next = domain.OrderDesc
				case domain.OrderDesc:
					next = ""
				}
			}
			h.SortHref = links.list(SortEvent{Key: c.Key, Direction: next}.Apply(links.Current))
		}
		v.Headers = append(v.Headers, h)
	}

	for _, row := range t.rows {
		id := row.ID(t.IDField())
		rv := RowView{ID: id}
		if v.Clickable {
			rv.Href = links.click(id)
		}
		for _, c := range cols {
			rv.Cells = append(rv.Cells, CellView{Text: CellValue(row, c), Class: CellClass(row, c), Align: align(c)})
		}
		if t.cfg.ShowActions {
			for _, a := range t.cfg.Actions {
				if !ActionVisible(a, row) {
					continue
				}
				rv.Actions = append(rv.Actions, ActionView{
					Name:  actionName(a),
					Label: a.Label,
					Icon:  a.Icon,
					Color: a.Color,
					Href:  links.action(actionName(a), id),
				})
			}
		}
		v.Rows = append(v.Rows, rv)
	}

	if t.cfg.Pageable {
		v.Pager = t.pager(links)
	}
	return v
}

func (t *Table) pager(links Links) *PagerView {
	size := links.Current.Limit
	if size <= 0 {
		size = t.PageSize()
	}
	total := t.TotalItems()
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	page := links.Current.Page
	if page < 1 {
		page = 1
	}

	p := &PagerView{Page: page, Pages: pages, Total: total}
	if page > 1 {
		p.PrevHref = links.list(PageEvent{Page: page - 1, Size: size}.Apply(links.Current))
	}
	if page < pages {
		p.NextHref = links.list(PageEvent{Page: page + 1, Size: size}.Apply(links.Current))
	}
	return p
}

func align(c descriptor.Column) descriptor.Align {
	if c.Align == "" {
		return descriptor.AlignLeft
	}
	return c.Align
}
