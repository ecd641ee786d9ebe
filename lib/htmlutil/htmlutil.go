package htmlutil

import (
	"bytes"
	"sejongauth/lib/textutil"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	// <br> separates words in table cells
	if node.Type == html.ElementNode && node.Data == "br" {
		buffer.WriteByte(' ')
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText returns the text of every node in `sel` joined by a space, with
// whitespace collapsed and non printable characters removed.
func CleanText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for i, n := range sel.Nodes {
		if i > 0 {
			buffer.WriteByte(' ')
		}
		getTextRecursive(n, &buffer)
	}
	return textutil.CollapseSpace(removeNonPrintable(buffer.String()))
}

// CellTexts returns the CleanText of each node in `sel` separately, empty
// cells are kept as "".
func CellTexts(sel *goquery.Selection) []string {
	out := make([]string, sel.Length())
	sel.Each(func(i int, cell *goquery.Selection) {
		out[i] = CleanText(cell)
	})
	return out
}
