package descriptor

import (
	"context"

	"github.com/mboutique/backoffice/internal/core/ports"
)

// ColumnKind selects the default cell formatting.
type ColumnKind string

const (
	ColumnText     ColumnKind = "text"
	ColumnNumber   ColumnKind = "number"
	ColumnDate     ColumnKind = "date"
	ColumnBoolean  ColumnKind = "boolean"
	ColumnCurrency ColumnKind = "currency"
	ColumnCustom   ColumnKind = "custom"
)

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Column describes one table column. Format takes precedence over Kind.
// CellClassFunc takes precedence over CellClass.
type Column struct {
	Key        string
	Label      string
	Kind       ColumnKind
	Sortable   bool
	Filterable bool
	Width      string
	Align      Align
	Hidden     bool

	Format        func(value any) string
	CellClass     string
	CellClassFunc func(row Record) string
}

// ActionHandler runs a per-row action. nav lets the handler move the user
// elsewhere; the table itself never navigates on an action.
type ActionHandler func(ctx context.Context, row Record, nav ports.Navigator) error

// Action is a per-row button. A nil Visible means always visible.
type Action struct {
	Name    string
	Label   string
	Icon    string
	Color   string
	Visible func(row Record) bool
	Handler ActionHandler
}

// DefaultIDField is the row identity key used when a table names none.
const DefaultIDField = "_id"

// TableConfig is the configuration of a dynamic table. Nil pointers take the
// renderer defaults.
type TableConfig struct {
	Columns      []Column
	Actions      []Action
	RowRoute     string
	IDField      string
	Clickable    *bool
	ShowActions  bool
	EmptyMessage string
	Loading      bool
	Pageable     bool
	PageSize     int
	TotalItems   *int
}
