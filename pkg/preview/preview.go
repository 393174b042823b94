// Package preview extracts link-preview metadata (title, image, price) from
// product pages, preferring Open Graph tags and falling back to JSON-LD and
// the document title.
package preview

import (
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Preview is the scraped metadata of a page. PriceCents is nil when no price
// could be recognized.
type Preview struct {
	URL        string `json:"url"`
	Title      string `json:"title,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	PriceCents *int64 `json:"price_cents,omitempty"`
	Currency   string `json:"currency,omitempty"`
}

// Parse walks the HTML document once and fills a Preview from whatever
// metadata the page carries. Open Graph wins over JSON-LD, JSON-LD wins over
// generic fallbacks.
func Parse(r io.Reader, pageURL string) (*Preview, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	p := &Preview{URL: pageURL}
	var docTitle string
	var ldPrice *int64
	var ldCurrency, ldImage, ldName string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				prop := attr(n, "property")
				if prop == "" {
					prop = attr(n, "name")
				}
				content := attr(n, "content")
				switch prop {
				case "og:title":
					if p.Title == "" {
						p.Title = content
					}
				case "og:image":
					if p.ImageURL == "" {
						p.ImageURL = content
					}
				case "og:price:amount", "product:price:amount":
					if p.PriceCents == nil {
						p.PriceCents = parsePrice(content)
					}
				case "og:price:currency", "product:price:currency":
					if p.Currency == "" {
						p.Currency = strings.ToUpper(content)
					}
				}
				if attr(n, "itemprop") == "price" && p.PriceCents == nil {
					p.PriceCents = parsePrice(content)
				}
			case "title":
				if docTitle == "" && n.FirstChild != nil {
					docTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			case "script":
				if attr(n, "type") == "application/ld+json" && n.FirstChild != nil {
					name, image, price, currency := parseJSONLD(n.FirstChild.Data)
					if ldName == "" {
						ldName = name
					}
					if ldImage == "" {
						ldImage = image
					}
					if ldPrice == nil {
						ldPrice = price
					}
					if ldCurrency == "" {
						ldCurrency = currency
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if p.Title == "" {
		p.Title = ldName
	}
	if p.Title == "" {
		p.Title = docTitle
	}
	if p.ImageURL == "" {
		p.ImageURL = ldImage
	}
	if p.PriceCents == nil {
		p.PriceCents = ldPrice
	}
	if p.Currency == "" {
		p.Currency = ldCurrency
	}

	p.ImageURL = absoluteURL(pageURL, p.ImageURL)
	return p, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// absoluteURL resolves a possibly relative image URL against the page URL
func absoluteURL(pageURL, ref string) string {
	if ref == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// parseJSONLD pulls name/image/price out of a schema.org Product block.
// Anything that does not look like a Product (or a list containing one) is
// ignored.
func parseJSONLD(raw string) (name, image string, priceCents *int64, currency string) {
	var data interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return
	}

	var scan func(v interface{})
	scan = func(v interface{}) {
		switch node := v.(type) {
		case []interface{}:
			for _, item := range node {
				scan(item)
			}
		case map[string]interface{}:
			if graph, ok := node["@graph"]; ok {
				scan(graph)
			}
			if t, _ := node["@type"].(string); t == "Product" {
				if name == "" {
					name, _ = node["name"].(string)
				}
				if image == "" {
					switch img := node["image"].(type) {
					case string:
						image = img
					case []interface{}:
						if len(img) > 0 {
							image, _ = img[0].(string)
						}
					}
				}
				scan(node["offers"])
			}
			if t, _ := node["@type"].(string); t == "Offer" || t == "AggregateOffer" {
				if priceCents == nil {
					switch price := node["price"].(type) {
					case string:
						priceCents = parsePrice(price)
					case float64:
						cents := int64(price*100 + 0.5)
						if cents > 0 {
							priceCents = &cents
						}
					}
					if priceCents == nil {
						if low, ok := node["lowPrice"].(float64); ok {
							cents := int64(low*100 + 0.5)
							if cents > 0 {
								priceCents = &cents
							}
						}
					}
				}
				if currency == "" {
					currency, _ = node["priceCurrency"].(string)
				}
			}
		}
	}
	scan(data)
	return
}

// parsePrice converts a human price string to minor units. Accepts "1299",
// "1299.90", "1 299,90" and similar; a trailing fraction of one or two digits
// is treated as the decimal part.
func parsePrice(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var digits []rune
	fractionAt := -1
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, r)
		case r == '.' || r == ',':
			fractionAt = len(digits)
		case r == ' ' || r == ' ' || r == '\'':
			// thousands separators
		default:
			// currency symbols and surrounding text are ignored
		}
	}
	if len(digits) == 0 {
		return nil
	}

	fracLen := 0
	if fractionAt >= 0 {
		fracLen = len(digits) - fractionAt
		if fracLen > 2 {
			// a dot three or more digits from the end is a thousands
			// separator, not a decimal point
			fracLen = 0
		}
	}

	var value int64
	for _, d := range digits {
		value = value*10 + int64(d-'0')
	}
	switch fracLen {
	case 1:
		value *= 10
	case 0:
		value *= 100
	}
	if value <= 0 {
		return nil
	}
	return &value
}
