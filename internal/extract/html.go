package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// decodeHTML parses the file as HTML and returns its visible text nodes.
func decodeHTML(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open html: %w", err)
	}
	defer f.Close()

	r, err := charset.NewReader(f, "")
	if err != nil {
		return "", fmt.Errorf("detect charset: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()
	return doc.Text(), nil
}
