package source

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// document holds the three fields a web source contributes to the prompt.
type document struct {
	title       string
	description string
	text        string
}

// parseDocument extracts the title, the description meta tag and the body text.
func parseDocument(r io.Reader) (document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return document{}, err
	}

	var doc document
	var body *html.Node
	titleFound := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if !titleFound {
					titleFound = true
					doc.title = strings.Join(strings.Fields(textContent(n)), " ")
				}
			case atom.Meta:
				if strings.EqualFold(attr(n, "name"), "description") && doc.description == "" {
					doc.description = attr(n, "content")
				}
			case atom.Body:
				if body == nil {
					body = n
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if body != nil {
		doc.text = collapseNewlines(textContent(body))
	}
	return doc, nil
}

// textContent concatenates descendant text nodes the way the DOM property does,
// minus non-rendered elements.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
