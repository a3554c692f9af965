package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// redirectNavigator records the navigation requested while serving a request;
// follow turns it into a 303.
type redirectNavigator struct {
	path string
}

func (n *redirectNavigator) Navigate(path string) { n.path = path }

func (n *redirectNavigator) follow(c echo.Context, fallback string) error {
	target := n.path
	if target == "" {
		target = fallback
	}
	return c.Redirect(http.StatusSeeOther, target)
}
