package view

import (
	"github.com/mboutique/backoffice/internal/core/form"
	"github.com/mboutique/backoffice/internal/core/table"
)

// FormData renders a dynamic form. Action is the post target.
type FormData struct {
	Heading    string
	Subtitle   string
	Action     string
	Fields     []form.FieldView
	Submit     string
	Cancel     string
	CancelHref string
}

// ListData renders a list screen.
type ListData struct {
	Heading     string
	ActionLabel string
	CreateHref  string
	SearchHref  string
	Query       string
	Table       table.View
}

type ConfirmData struct {
	Heading    string
	Message    string
	Action     string
	CancelHref string
}

type ErrorData struct {
	Status  int
	Message string
}
