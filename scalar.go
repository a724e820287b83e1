package abe

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// decodeScalar decodes a scalar record: price or valuation.
//
// Without query, the value is the first line of r, like "$10,000". With a
// JSONPath query, r is a JSON document and query selects the value, e.g.
// "$.valuation.amount" on a document exported by the accounting tool.
func decodeScalar(r io.Reader, query string) (decimal.Decimal, error) {
	if query == "" {
		scanner := bufio.NewScanner(r)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return decimal.Zero, err
			}
			return decimal.Zero, malformed("empty record")
		}
		return parseDecimal(scanner.Text())
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return decimal.Zero, malformed("not a JSON document: %v", err)
	}
	jval, err := jsonpath.Get(query, jobj)
	if err != nil {
		return decimal.Zero, malformed("cannot evaluate %q: %v", query, err)
	}
	// jsonpath is never clear about returning a list of 1 answer or a single
	// answer: keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, malformed("%q selects %v: %v", query, v, err)
		}
		return d, nil
	case string:
		return parseDecimal(v)
	default:
		return decimal.Zero, malformed("%q selects %v which is not a number", query, fmt.Sprint(jval))
	}
}
