// Package table interprets a descriptor.TableConfig and a data sequence into a
// grid view model. It emits row clicks and runs row actions; paging and
// sorting are only encoded as links for the host screen to act on.
package table

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/mboutique/backoffice/internal/core/descriptor"
	"github.com/mboutique/backoffice/internal/core/ports"
)

const (
	defaultPageSize     = 10
	defaultEmptyMessage = "Aucune donnée disponible"

	// ActionsColumn is the key of the appended actions column.
	ActionsColumn = "actions"
)

var (
	ErrUnknownAction = errors.New("unknown table action")
	ErrActionHidden  = errors.New("action not available for this row")
)

// RowClickEvent is emitted when a clickable row is clicked.
type RowClickEvent struct {
	Row descriptor.Record
	ID  string
}

type Table struct {
	cfg  descriptor.TableConfig
	rows []descriptor.Record
	nav  ports.Navigator

	onRowClick func(RowClickEvent)
}

// New binds cfg to rows. nav receives row-route navigation and is handed to
// action handlers; it may be nil when neither is used.
func New(cfg descriptor.TableConfig, rows []descriptor.Record, nav ports.Navigator) *Table {
	return &Table{cfg: cfg, rows: rows, nav: nav}
}

// OnRowClick registers the row click hook.
func (t *Table) OnRowClick(fn func(RowClickEvent)) { t.onRowClick = fn }

func (t *Table) Rows() []descriptor.Record { return t.rows }

func (t *Table) IDField() string {
	if t.cfg.IDField == "" {
		return descriptor.DefaultIDField
	}
	return t.cfg.IDField
}

func (t *Table) Clickable() bool {
	return t.cfg.Clickable == nil || *t.cfg.Clickable
}

func (t *Table) PageSize() int {
	if t.cfg.PageSize <= 0 {
		return defaultPageSize
	}
	return t.cfg.PageSize
}

func (t *Table) TotalItems() int {
	if t.cfg.TotalItems == nil {
		return len(t.rows)
	}
	return *t.cfg.TotalItems
}

func (t *Table) EmptyMessage() string {
	if t.cfg.EmptyMessage == "" {
		return defaultEmptyMessage
	}
	return t.cfg.EmptyMessage
}

// VisibleColumns returns the non-hidden columns in descriptor order.
func (t *Table) VisibleColumns() []descriptor.Column {
	out := make([]descriptor.Column, 0, len(t.cfg.Columns))
	for _, c := range t.cfg.Columns {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// DisplayedColumns returns the keys of the rendered columns, the actions
// column last when enabled.
func (t *Table) DisplayedColumns() []string {
	cols := t.VisibleColumns()
	keys := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		keys = append(keys, c.Key)
	}
	if t.cfg.ShowActions {
		keys = append(keys, ActionsColumn)
	}
	return keys
}

// Click handles a click on row. It does nothing on a non-clickable table and
// reports whether the click was handled. Otherwise it emits the event and,
// with a row route configured, also navigates to {route}/{id}.
func (t *Table) Click(row descriptor.Record) bool {
	if !t.Clickable() {
		return false
	}
	id := row.ID(t.IDField())
	if t.onRowClick != nil {
		t.onRowClick(RowClickEvent{Row: row, ID: id})
	}
	if t.cfg.RowRoute != "" && t.nav != nil {
		t.nav.Navigate(strings.TrimRight(t.cfg.RowRoute, "/") + "/" + url.PathEscape(id))
	}
	return true
}

// Find returns the row whose identity is id.
func (t *Table) Find(id string) (descriptor.Record, bool) {
	for _, r := range t.rows {
		if r.ID(t.IDField()) == id {
			return r, true
		}
	}
	return nil, false
}

// ActionVisible evaluates the visibility predicate of a.
func ActionVisible(a descriptor.Action, row descriptor.Record) bool {
	return a.Visible == nil || a.Visible(row)
}

// Invoke runs the named action against row. It never triggers the row-route
// navigation of Click.
func (t *Table) Invoke(ctx context.Context, name string, row descriptor.Record) error {
	for _, a := range t.cfg.Actions {
		if actionName(a) != name {
			continue
		}
		if !ActionVisible(a, row) {
			return ErrActionHidden
		}
		if a.Handler == nil {
			return nil
		}
		return a.Handler(ctx, row, t.nav)
	}
	return ErrUnknownAction
}

func actionName(a descriptor.Action) string {
	if a.Name != "" {
		return a.Name
	}
	return a.Label
}
