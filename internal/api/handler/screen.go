package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mboutique/backoffice/internal/api/view"
	"github.com/mboutique/backoffice/internal/core/descriptor"
	"github.com/mboutique/backoffice/internal/core/domain"
	"github.com/mboutique/backoffice/internal/core/form"
	"github.com/mboutique/backoffice/internal/core/ports"
	"github.com/mboutique/backoffice/internal/core/table"
	"github.com/mboutique/backoffice/internal/pkg/metrics"
)

// ScreenConfig declares the list and detail screens of one entity kind.
type ScreenConfig struct {
	// Collection is both the upstream collection and the route prefix.
	Collection  string
	Heading     string
	Entity      string
	CreateLabel string
	Table       descriptor.TableConfig
	Form        descriptor.FormConfig
	// Paginated lists through the paginated endpoint to get a server total.
	Paginated bool
	// ConfirmDelete phrases the delete confirmation for a row.
	ConfirmDelete func(row descriptor.Record) string
}

// Screen wires an entity client to a dynamic table (list) and a dynamic form
// (create and edit).
type Screen[T any] struct {
	cfg    ScreenConfig
	client ports.EntityClient[T]
	log    zerolog.Logger
}

func NewScreen[T any](client ports.EntityClient[T], cfg ScreenConfig, log zerolog.Logger) *Screen[T] {
	return &Screen[T]{cfg: cfg, client: client, log: log.With().Str("screen", cfg.Collection).Logger()}
}

func (s *Screen[T]) Config() ScreenConfig { return s.cfg }

func (s *Screen[T]) base() string { return "/" + s.cfg.Collection }

// Register mounts the screen routes on g, which must already be guarded.
func (s *Screen[T]) Register(g *echo.Group) {
	g.GET("", s.List)
	g.GET("/click", s.Click)
	g.GET("/actions/:action", s.Action)
	g.GET("/nouveau", s.New)
	g.POST("/nouveau", s.Save)
	g.GET("/:id", s.Edit)
	g.POST("/:id", s.Save)
	g.GET("/:id/supprimer", s.ConfirmRemove)
	g.POST("/:id/supprimer", s.Remove)
}

// EditAction navigates to the edit screen of a row identified by idField.
func EditAction(base, idField string) descriptor.Action {
	idField = rowIDField(idField)
	return descriptor.Action{
		Name:  "edit",
		Label: "Modifier",
		Icon:  "edit",
		Color: "primary",
		Handler: func(_ context.Context, row descriptor.Record, nav ports.Navigator) error {
			nav.Navigate(base + "/" + row.ID(idField))
			return nil
		},
	}
}

// DeleteAction navigates to the delete confirmation of a row identified by
// idField.
func DeleteAction(base, idField string) descriptor.Action {
	idField = rowIDField(idField)
	return descriptor.Action{
		Name:  "delete",
		Label: "Supprimer",
		Icon:  "delete",
		Color: "warn",
		Handler: func(_ context.Context, row descriptor.Record, nav ports.Navigator) error {
			nav.Navigate(base + "/" + row.ID(idField) + "/supprimer")
			return nil
		},
	}
}

func rowIDField(name string) string {
	if name == "" {
		return descriptor.DefaultIDField
	}
	return name
}

// List renders the table. page, limit, sort and order are forwarded from the
// query string; a non-empty q searches instead of listing.
func (s *Screen[T]) List(c echo.Context) error {
	ctx := c.Request().Context()
	p := domain.ParsePagination(c.QueryParams())
	q := strings.TrimSpace(c.QueryParam("q"))

	cfg := s.cfg.Table
	cfg.Loading = true

	var (
		items []T
		err   error
	)
	switch {
	case q != "":
		items, err = s.client.Search(ctx, q, p)
	case s.cfg.Paginated:
		var res *domain.Page[T]
		if res, err = s.client.ListPaginated(ctx, p); err == nil {
			items = res.Items
			cfg.TotalItems = &res.Total
		}
	default:
		items, err = s.client.ListAll(ctx, p)
	}
	cfg.Loading = false

	status := http.StatusOK
	var rows []descriptor.Record
	if err == nil {
		rows, err = descriptor.ToRecords(items)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("list failed")
		status = statusFor(err)
		setFlash(c, view.FlashError, domain.UserMessage(err, "Erreur lors du chargement"))
		rows = nil
	}

	tbl := table.New(cfg, rows, nil)
	return c.Render(status, view.PageList, page(c, s.cfg.Heading, view.ListData{
		Heading:     s.cfg.Heading,
		ActionLabel: s.cfg.CreateLabel,
		CreateHref:  s.base() + "/nouveau",
		SearchHref:  s.base(),
		Query:       q,
		Table:       tbl.View(table.Links{Base: s.base(), Current: *p}),
	}))
}

// Click handles a row click: the table emits the event and follows the row
// route.
func (s *Screen[T]) Click(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id")
	}
	nav := &redirectNavigator{}
	tbl := table.New(s.cfg.Table, nil, nav)
	tbl.OnRowClick(func(e table.RowClickEvent) {
		s.log.Debug().Str("id", e.ID).Msg("row click")
	})
	tbl.Click(descriptor.Record{tbl.IDField(): id})
	return nav.follow(c, s.base())
}

// Action runs a per-row action on the row loaded from the remote service.
func (s *Screen[T]) Action(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.QueryParam("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id")
	}
	row, err := s.load(ctx, id)
	if err != nil {
		setFlash(c, view.FlashError, domain.UserMessage(err, "Erreur lors du chargement"))
		return c.Redirect(http.StatusSeeOther, s.base())
	}

	nav := &redirectNavigator{}
	err = table.New(s.cfg.Table, []descriptor.Record{row}, nav).Invoke(ctx, c.Param("action"), row)
	switch {
	case errors.Is(err, table.ErrUnknownAction):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, table.ErrActionHidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case err != nil:
		setFlash(c, view.FlashError, domain.UserMessage(err, "Erreur lors de l'action"))
	}
	return nav.follow(c, s.base())
}

func (s *Screen[T]) formConfig(mode descriptor.FormMode) descriptor.FormConfig {
	cfg := s.cfg.Form
	cfg.Mode = mode
	return cfg
}

// New renders an empty create form.
func (s *Screen[T]) New(c echo.Context) error {
	return s.renderForm(c, http.StatusOK, "", form.New(s.formConfig(descriptor.ModeCreate), nil))
}

// Edit loads the record and applies it to the edit form.
func (s *Screen[T]) Edit(c echo.Context) error {
	id := c.Param("id")
	row, err := s.load(c.Request().Context(), id)
	if err != nil {
		setFlash(c, view.FlashError, domain.UserMessage(err, "Erreur lors du chargement"))
		return c.Redirect(http.StatusSeeOther, s.base())
	}
	f := form.New(s.formConfig(descriptor.ModeEdit), nil)
	f.SetInitial(row)
	return s.renderForm(c, http.StatusOK, id, f)
}

// Save handles both create and edit posts: an id route parameter selects
// edit mode. A cancel post navigates back without validating.
func (s *Screen[T]) Save(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	mode := descriptor.ModeCreate
	if id != "" {
		mode = descriptor.ModeEdit
	}

	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	nav := &redirectNavigator{}
	f := form.New(s.formConfig(mode), nil)
	f.OnCancel(func() { nav.Navigate(s.base()) })
	if params.Get("_op") == "cancel" {
		f.Cancel()
		return nav.follow(c, s.base())
	}

	if mode == descriptor.ModeEdit && hasDisabled(s.cfg.Form) {
		row, err := s.load(ctx, id)
		if err != nil {
			setFlash(c, view.FlashError, domain.UserMessage(err, "Erreur lors du chargement"))
			return c.Redirect(http.StatusSeeOther, s.base())
		}
		f.SetInitial(row)
	}
	f.Bind(params)

	f.OnSubmit(func(descriptor.Record) { nav.Navigate(s.base()) })
	values, err := f.Submit()
	if err != nil {
		metrics.FormRejectionsTotal.WithLabelValues(s.cfg.Collection).Inc()
		return s.renderForm(c, statusFor(err), id, f)
	}

	partial, err := descriptor.Decode[T](values)
	if err != nil {
		return err
	}
	if mode == descriptor.ModeEdit {
		_, err = s.client.Update(ctx, id, partial)
	} else {
		_, err = s.client.Create(ctx, partial)
	}
	if err != nil {
		s.log.Error().Err(err).Str("mode", string(mode)).Msg("save failed")
		c.Set(flashPending, &view.Flash{Kind: view.FlashError, Message: domain.UserMessage(err, "Erreur lors de l'enregistrement")})
		return s.renderForm(c, statusFor(err), id, f)
	}

	setFlash(c, view.FlashSuccess, "Enregistré avec succès")
	return nav.follow(c, s.base())
}

// ConfirmRemove asks for confirmation before deleting.
func (s *Screen[T]) ConfirmRemove(c echo.Context) error {
	id := c.Param("id")
	row, err := s.load(c.Request().Context(), id)
	if err != nil {
		setFlash(c, view.FlashError, domain.UserMessage(err, "Erreur lors du chargement"))
		return c.Redirect(http.StatusSeeOther, s.base())
	}
	msg := "Voulez-vous vraiment supprimer cet élément ?"
	if s.cfg.ConfirmDelete != nil {
		msg = s.cfg.ConfirmDelete(row)
	}
	return c.Render(http.StatusOK, view.PageConfirm, page(c, s.cfg.Heading, view.ConfirmData{
		Heading:    "Suppression",
		Message:    msg,
		Action:     s.base() + "/" + id + "/supprimer",
		CancelHref: s.base(),
	}))
}

// Remove deletes the record and returns to the list, which re-queries. A
// record that is already gone surfaces as an error notification.
func (s *Screen[T]) Remove(c echo.Context) error {
	id := c.Param("id")
	if err := s.client.Delete(c.Request().Context(), id); err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("delete failed")
		setFlash(c, view.FlashError, domain.UserMessage(err, "Erreur lors de la suppression"))
	} else {
		setFlash(c, view.FlashSuccess, "Supprimé avec succès")
	}
	return c.Redirect(http.StatusSeeOther, s.base())
}

func (s *Screen[T]) load(ctx context.Context, id string) (descriptor.Record, error) {
	item, err := s.client.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return descriptor.ToRecord(item)
}

func (s *Screen[T]) renderForm(c echo.Context, status int, id string, f *form.Form) error {
	cfg := f.Config()
	action := s.base() + "/nouveau"
	if id != "" {
		action = s.base() + "/" + id
	}
	return c.Render(status, view.PageForm, page(c, s.cfg.Heading, view.FormData{
		Heading:    form.Title(s.cfg.Entity, cfg.EffectiveMode()),
		Subtitle:   s.cfg.Heading,
		Action:     action,
		Fields:     f.Fields(),
		Submit:     cfg.SubmitText(),
		Cancel:     cfg.CancelText(),
		CancelHref: s.base(),
	}))
}

func hasDisabled(cfg descriptor.FormConfig) bool {
	for _, f := range cfg.Fields {
		if f.Disabled {
			return true
		}
	}
	return false
}
