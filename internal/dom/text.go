package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Elements whose content is never displayed.
var skipTags = map[string]bool{
	"script": true, "style": true, "template": true,
	"noscript": true, "head": true,
}

// Elements that start a new line of output.
var blockTags = map[string]bool{
	"p": true, "div": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "li": true, "br": true,
	"ul": true, "ol": true, "form": true, "section": true,
	"main": true, "header": true, "footer": true, "dl": true,
	"dt": true, "dd": true, "fieldset": true, "label": true,
}

// VisibleText returns the text a reader would see in e, one line per block
// element. Elements with the hidden attribute or the "hidden" class are
// skipped. Inputs render as "[value]".
func (e *Element) VisibleText() string {
	var sb strings.Builder
	var extract func(*html.Node)

	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipTags[n.Data] || hasAttr(n, "hidden") || hasClass(n, "hidden") {
				return
			}
			if n.Data == "input" {
				switch strings.ToLower(attr(n, "type")) {
				case "hidden":
					return
				case "submit", "button", "reset":
					sb.WriteString(" (" + attr(n, "value") + ") ")
				default:
					sb.WriteString(" [" + attr(n, "value") + "] ")
				}
				return
			}
			if n.Data == "button" {
				sb.WriteString(" (")
				defer sb.WriteString(") ")
			}
		}

		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}

		// Add newlines after block elements
		if n.Type == html.ElementNode && blockTags[n.Data] {
			sb.WriteString("\n")
		}
	}

	extract(e.node)

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
