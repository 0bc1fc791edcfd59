package view

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// RendererConfig configures HTML output.
type RendererConfig struct {
	// Doctype prefixes the output with <!DOCTYPE html> when the root is <html>.
	Doctype bool
}

// Renderer writes node trees as HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a Renderer.
func NewRenderer(config RendererConfig) *Renderer {
	return &Renderer{config: config}
}

// RenderToString renders a tree to a string.
func (r *Renderer) RenderToString(n *Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a tree to w.
func (r *Renderer) RenderToWriter(w io.Writer, n *Node) error {
	if r.config.Doctype && n != nil && n.Kind == KindElement && n.Tag == "html" {
		if _, err := io.WriteString(w, "<!DOCTYPE html>"); err != nil {
			return err
		}
	}
	return r.renderNode(w, n)
}

func (r *Renderer) renderNode(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindElement:
		return r.renderElement(w, n)
	case KindText:
		_, err := io.WriteString(w, escapeHTML(n.Text))
		return err
	case KindRaw:
		_, err := io.WriteString(w, n.Text)
		return err
	case KindFragment, KindOutlet:
		// An unfilled outlet renders its (normally empty) children.
		return r.renderChildren(w, n)
	default:
		return fmt.Errorf("unknown node kind: %d", n.Kind)
	}
}

func (r *Renderer) renderElement(w io.Writer, n *Node) error {
	if _, err := io.WriteString(w, "<"+n.Tag); err != nil {
		return err
	}
	for _, a := range n.Attrs {
		if _, err := fmt.Fprintf(w, ` %s="%s"`, a.Key, escapeAttr(a.Value)); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if IsVoidElement(n.Tag) {
		return nil
	}
	if err := r.renderChildren(w, n); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</"+n.Tag+">")
	return err
}

func (r *Renderer) renderChildren(w io.Writer, n *Node) error {
	for _, c := range n.Children {
		if err := r.renderNode(w, c); err != nil {
			return err
		}
	}
	return nil
}

var (
	htmlEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;",
		"\n", "&#10;", "\r", "&#13;", "\t", "&#9;",
	)
)

func escapeHTML(s string) string { return htmlEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
