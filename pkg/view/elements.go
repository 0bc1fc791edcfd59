package view

import "strings"

// voidElements cannot have children or a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// IsVoidElement reports whether tag is an HTML void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

func Html(args ...any) *Node     { return El("html", args...) }
func Head(args ...any) *Node     { return El("head", args...) }
func Body(args ...any) *Node     { return El("body", args...) }
func Title(args ...any) *Node    { return El("title", args...) }
func Meta(args ...any) *Node     { return El("meta", args...) }
func Main(args ...any) *Node     { return El("main", args...) }
func Nav(args ...any) *Node      { return El("nav", args...) }
func Section(args ...any) *Node  { return El("section", args...) }
func Div(args ...any) *Node      { return El("div", args...) }
func Span(args ...any) *Node     { return El("span", args...) }
func P(args ...any) *Node        { return El("p", args...) }
func H1(args ...any) *Node       { return El("h1", args...) }
func H2(args ...any) *Node       { return El("h2", args...) }
func A(args ...any) *Node        { return El("a", args...) }
func Ul(args ...any) *Node       { return El("ul", args...) }
func Li(args ...any) *Node       { return El("li", args...) }
func Form(args ...any) *Node     { return El("form", args...) }
func Input(args ...any) *Node    { return El("input", args...) }
func Label(args ...any) *Node    { return El("label", args...) }
func Button(args ...any) *Node   { return El("button", args...) }
func Textarea(args ...any) *Node { return El("textarea", args...) }
func Script(args ...any) *Node   { return El("script", args...) }

// ID sets the id attribute.
func ID(id string) Attr { return Attr{Key: "id", Value: id} }

// Class sets the class attribute, joining classes with spaces.
func Class(classes ...string) Attr { return Attr{Key: "class", Value: strings.Join(classes, " ")} }

// Href sets the href attribute.
func Href(url string) Attr { return Attr{Key: "href", Value: url} }

// Name sets the name attribute.
func Name(name string) Attr { return Attr{Key: "name", Value: name} }

// Type sets the type attribute.
func Type(typ string) Attr { return Attr{Key: "type", Value: typ} }

// Lang sets the lang attribute.
func Lang(lang string) Attr { return Attr{Key: "lang", Value: lang} }

// Charset sets the charset attribute.
func Charset(cs string) Attr { return Attr{Key: "charset", Value: cs} }

// Src sets the src attribute.
func Src(url string) Attr { return Attr{Key: "src", Value: url} }

// Action sets the form action attribute.
func Action(url string) Attr { return Attr{Key: "action", Value: url} }

// Method sets the form method attribute.
func Method(m string) Attr { return Attr{Key: "method", Value: m} }

// Data creates a data-* attribute.
func Data(key, value string) Attr { return Attr{Key: "data-" + key, Value: value} }

// Link creates an anchor that the navigation client intercepts.
func Link(href string, children ...any) *Node {
	args := append([]any{Href(href), Data("link", "true")}, children...)
	return A(args...)
}
