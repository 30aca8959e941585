package tweet

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Rendered is the presentation form of a classified post
type Rendered struct {
	Title string
	Body  string
}

// Render builds the feed title and HTML body of a post
func Render(post *ClassifiedPost) Rendered {
	return Rendered{
		Title: Title(post),
		Body:  Body(post),
	}
}

// Title returns "<label> @<handle>" using the handle of the account that posted to the timeline
func Title(post *ClassifiedPost) string {
	return fmt.Sprintf("%s @%s", post.Variant.Label(), post.Author.Handle)
}

// Body returns the HTML body of a post.
// Text from the API arrives entity-encoded; it is decoded once and escaped exactly once on render.
func Body(post *ClassifiedPost) string {
	var nodes []*html.Node

	switch post.Variant {
	case Repost:
		// An unresolved repost has no author to attribute
		if post.CanonicalAuthor.Handle != "" {
			attribution := element(atom.I)
			attribution.AppendChild(textNode(fmt.Sprintf("Originally tweeted by @%s (%s)",
				post.CanonicalAuthor.Handle, post.CanonicalAuthor.Name)))
			nodes = append(nodes, paragraph(attribution))
		}
		nodes = append(nodes, textParagraph(post.CanonicalBody))

	case Quote, QuotedRepost:
		nodes = append(nodes, textParagraph(post.CanonicalBody))
		nodes = append(nodes, quotedNodes(post.Secondary)...)

	default:
		nodes = append(nodes, textLines(post.CanonicalBody)...)
	}

	if post.MediaURL != "" {
		img := element(atom.Img)
		img.Attr = []html.Attribute{{Key: "src", Val: post.MediaURL}}
		nodes = append(nodes, paragraph(img))
	}

	var b strings.Builder
	for _, n := range nodes {
		// Only void elements with children fail to render, and none are built here
		_ = html.Render(&b, n)
	}
	return b.String()
}

func quotedNodes(secondary *Quoted) []*html.Node {
	if secondary == nil || !secondary.Available {
		return []*html.Node{textParagraph(UnavailablePlaceholder)}
	}

	divider := fmt.Sprintf("*** Quoted @%s (%s) ***", secondary.Author.Handle, secondary.Author.Name)
	return []*html.Node{
		paragraph(textNode(divider)),
		textParagraph(secondary.Body),
	}
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func paragraph(children ...*html.Node) *html.Node {
	p := element(atom.P)
	for _, child := range children {
		p.AppendChild(child)
	}
	return p
}

func textParagraph(s string) *html.Node {
	return paragraph(textLines(s)...)
}

// textLines converts text into text nodes separated by <br> elements
func textLines(s string) []*html.Node {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	lines := strings.Split(s, "\n")
	nodes := make([]*html.Node, 0, len(lines)*2)
	for i, line := range lines {
		if i > 0 {
			nodes = append(nodes, element(atom.Br))
		}
		if line != "" {
			nodes = append(nodes, textNode(line))
		}
	}
	return nodes
}
