package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strings"
)

// Paginate lazily walks a Canvas listing, yielding one decoded record at a
// time. A JSON array body contributes each element; an object body is one
// record. The next page comes from the Link header's rel="next" entry and is
// requested as-is, so params only apply to the first request. The first error
// is yielded and ends the sequence. Each range over the result starts again
// from rawURL.
func Paginate[T any](ctx context.Context, c *Client, rawURL string, params url.Values) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		next, q := rawURL, params
		for next != "" {
			resp, body, err := c.get(ctx, next, q)
			if err != nil {
				yield(zero, err)
				return
			}

			records, err := splitRecords(body)
			if err != nil {
				yield(zero, fmt.Errorf("canvas: decode %s: %w", next, err))
				return
			}
			for _, raw := range records {
				var v T
				if err := json.Unmarshal(raw, &v); err != nil {
					yield(zero, fmt.Errorf("canvas: decode record from %s: %w", next, err))
					return
				}
				if !yield(v, nil) {
					return
				}
			}

			next = NextLink(resp.Header.Get("Link"))
			q = nil
		}
	}
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

func splitRecords(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		return nil, nil
	case trimmed[0] == '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	default:
		return []json.RawMessage{json.RawMessage(trimmed)}, nil
	}
}

// NextLink extracts the rel="next" URL from an RFC 8288 Link header, or ""
// when there is none.
func NextLink(header string) string {
	if header == "" {
		return ""
	}
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end <= start {
			return ""
		}
		return part[start+1 : end]
	}
	return ""
}
