// Package quote fetches live prices from JSON web services.
package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// Fetch gets the JSON document at addr and returns the price found at path,
// a JSONPath expression like "$.series.intraday.data[-1:][1]".
//
// Prices may be JSON numbers or strings, with a comma as decimal separator.
func Fetch(ctx context.Context, client *http.Client, addr, path string) (decimal.Decimal, error) {
	var jobj any
	if err := jwget(ctx, client, addr, &jobj); err != nil {
		return decimal.Zero, fmt.Errorf("error retrieving quote: %w", err)
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// jsonpath may return a list of a single answer, keep the first one
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	var price decimal.Decimal
	switch v := jval.(type) {
	case float64:
		price = decimal.NewFromFloat(v)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), " ", "")
		if strings.Contains(s, ",") && !strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
		price, err = decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid price %q at %q: %w", v, path, err)
		}
	default:
		return decimal.Zero, fmt.Errorf("no price at %q: got %v", path, jval)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("no price at %q: got %v", path, price)
	}
	return price, nil
}

// jwget performs an HTTP GET request and unmarshals the JSON response into data.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	log.Printf("%v %v%v %v", req.Method, req.URL.Host, req.URL.Path, resp.Status)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}
