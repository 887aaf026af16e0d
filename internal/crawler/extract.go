package crawler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extraction is the typed result of one pass over an HTML document.
type Extraction struct {
	title       string
	text        string
	scriptCount int
	hrefs       []string
}

// Title is the text of the last <title> element, trimmed but otherwise as
// written in the document.
func (e Extraction) Title() string { return e.title }

// Text is the visible text of the page with whitespace collapsed.
func (e Extraction) Text() string { return e.text }

// ScriptCount is the number of <script> elements anywhere in the document.
func (e Extraction) ScriptCount() int { return e.scriptCount }

// Hrefs are the raw href attributes of every anchor, in document order.
func (e Extraction) Hrefs() []string { return e.hrefs }

// Extract parses html and collects body text, the title, image alt text,
// the script count, and anchor hrefs. Script source that leaks into element
// text is stripped from the accumulated text.
func Extract(html []byte) (Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return Extraction{}, fmt.Errorf("parse html: %w", err)
	}

	var (
		out  Extraction
		text strings.Builder
	)
	collect := func(sel *goquery.Selection) string {
		text.WriteString(sel.Text())
		text.WriteByte(' ')
		acc := text.String()
		sel.Find("script").Each(func(_ int, script *goquery.Selection) {
			if src := script.Text(); src != "" {
				acc = strings.ReplaceAll(acc, src, "")
			}
		})
		text.Reset()
		text.WriteString(acc)
		return sel.Text()
	}

	doc.Find("body").Each(func(_ int, body *goquery.Selection) {
		collect(body)
	})
	doc.Find("title").Each(func(_ int, title *goquery.Selection) {
		out.title = strings.TrimSpace(collect(title))
	})
	doc.Find("img[alt]").Each(func(_ int, img *goquery.Selection) {
		if alt, _ := img.Attr("alt"); alt != "" {
			text.WriteString(alt)
			text.WriteByte(' ')
		}
	})

	out.text = strings.Join(strings.Fields(text.String()), " ")
	out.scriptCount = doc.Find("script").Length()
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			out.hrefs = append(out.hrefs, href)
		}
	})
	return out, nil
}
