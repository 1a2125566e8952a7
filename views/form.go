package views

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/vedran/blog/subscribe"
)

// SubscribeForm renders the newsletter form and, once a submission has
// settled, its message. The data attributes carry the messages for the
// script that submits without reloading.
func SubscribeForm(f FormContext) g.Node {
	msg := subscribe.Message(f.Result)
	return Div(
		Class("form-wrapper"),
		Form(
			Method("post"),
			Action(f.Action),
			Data("subscribe", ""),
			Data("success", subscribe.SuccessMessage),
			Data("fail", subscribe.FailureMessage),
			g.If(f.CSRFToken != "", Input(Type("hidden"), Name(f.CSRFField), Value(f.CSRFToken))),
			Div(
				Input(Type("email"), Name("email"), Placeholder("Email address")),
				Input(Type("submit"), Name("submit"), Value("Subscribe")),
			),
		),
		Div(
			Class("message"),
			Role("status"),
			g.If(msg == "", g.Attr("hidden")),
			g.Text(msg),
		),
	)
}
