package components

import (
	"context"

	"mavenestudio/services/leadform"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// ToastRegionID is the element notices are swapped into
const ToastRegionID = "toasts"

// Toasts renders queued notices on their own, for htmx error responses.
func Toasts(notices []leadform.Notice, oob bool) templ.Component {
	return View(func(context.Context) g.Node {
		return ToastRegion(notices, oob)
	})
}

// ToastRegion lists notices. With oob set the region replaces the one
// already on the page through an htmx out-of-band swap.
func ToastRegion(notices []leadform.Notice, oob bool) g.Node {
	return h.Div(h.ID(ToastRegionID), h.Class("toast-region"), g.Attr("aria-live", "polite"),
		g.If(oob, g.Attr("hx-swap-oob", "true")),
		g.Map(notices, toast),
	)
}

func toast(n leadform.Notice) g.Node {
	class, role := "toast", "status"
	if n.Destructive {
		class, role = "toast toast-destructive", "alert"
	}
	return h.Div(h.Class(class), h.Role(role),
		h.P(h.Class("toast-title"), g.Text(n.Title)),
		g.If(n.Description != "" && n.Description != n.Title,
			h.P(h.Class("toast-description"), g.Text(n.Description))),
	)
}
