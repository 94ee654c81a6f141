package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jomei/notionapi"

	"canvas-notion-sync/internal/domain"
	"canvas-notion-sync/internal/providers"
)

const (
	// maxChildrenPerAppend is Notion's limit on children per append request.
	maxChildrenPerAppend = 100
	// maxRichTextLen is Notion's limit on one rich text content string.
	maxRichTextLen = 2000
)

// Client writes assignment pages into one Notion database and maintains the
// digest page's blocks.
type Client struct {
	api        *notionapi.Client
	databaseID notionapi.DatabaseID
}

var _ providers.Destination = (*Client)(nil)

// Options tune the underlying notionapi client.
type Options struct {
	Version    string
	MaxRetries int
	HTTP       *http.Client
}

func New(token, databaseID string, opts Options) *Client {
	var clientOpts []notionapi.ClientOption
	if opts.Version != "" {
		clientOpts = append(clientOpts, notionapi.WithVersion(opts.Version))
	}
	if opts.MaxRetries > 0 {
		clientOpts = append(clientOpts, notionapi.WithRetry(opts.MaxRetries))
	}
	if opts.HTTP != nil {
		clientOpts = append(clientOpts, notionapi.WithHTTPClient(opts.HTTP))
	}
	return &Client{
		api:        notionapi.NewClient(notionapi.Token(token), clientOpts...),
		databaseID: notionapi.DatabaseID(databaseID),
	}
}

// DestinationHTTPError is a non-2xx answer from Notion.
type DestinationHTTPError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
}

func (e *DestinationHTTPError) Error() string {
	return fmt.Sprintf("notion: %s failed: status=%d code=%s message=%s", e.Op, e.StatusCode, e.Code, e.Message)
}

// Is lets errors.Is(err, providers.ErrNotFound) match missing or archived
// blocks and pages.
func (e *DestinationHTTPError) Is(target error) bool {
	if target != providers.ErrNotFound {
		return false
	}
	if e.StatusCode == http.StatusNotFound || e.Code == "object_not_found" {
		return true
	}
	return e.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(e.Message), "archived")
}

func wrapErr(op string, err error) error {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return &DestinationHTTPError{
			Op:         op,
			StatusCode: apiErr.Status,
			Code:       string(apiErr.Code),
			Message:    apiErr.Message,
		}
	}
	return fmt.Errorf("notion: %s: %w", op, err)
}

// QueryPages filters the database by equality on a title or rich-text
// property.
func (c *Client) QueryPages(ctx context.Context, f domain.Filter, limit int) ([]string, error) {
	resp, err := c.api.Database.Query(ctx, c.databaseID, &notionapi.DatabaseQueryRequest{
		Filter:   toFilter(f),
		PageSize: limit,
	})
	if err != nil {
		return nil, wrapErr("query database", err)
	}

	ids := make([]string, 0, len(resp.Results))
	for _, p := range resp.Results {
		ids = append(ids, string(p.ID))
	}
	return ids, nil
}

func (c *Client) CreatePage(ctx context.Context, props domain.Properties) (string, error) {
	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: c.databaseID,
		},
		Properties: toProperties(props),
	})
	if err != nil {
		return "", wrapErr("create page", err)
	}
	return string(page.ID), nil
}

func (c *Client) UpdatePage(ctx context.Context, pageID string, props domain.Properties) error {
	_, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: toProperties(props),
	})
	if err != nil {
		return wrapErr("update page", err)
	}
	return nil
}

// AppendBlocks appends blocks in order, split into requests of at most 100.
func (c *Client) AppendBlocks(ctx context.Context, pageID string, blocks []domain.Block) error {
	converted := toBlocks(blocks)
	for start := 0; start < len(converted); start += maxChildrenPerAppend {
		end := min(start+maxChildrenPerAppend, len(converted))
		_, err := c.api.Block.AppendChildren(ctx, notionapi.BlockID(pageID), &notionapi.AppendBlockChildrenRequest{
			Children: converted[start:end],
		})
		if err != nil {
			return wrapErr("append blocks", err)
		}
	}
	return nil
}

func (c *Client) ListChildBlocks(ctx context.Context, pageID, cursor string) ([]string, string, error) {
	resp, err := c.api.Block.GetChildren(ctx, notionapi.BlockID(pageID), &notionapi.Pagination{
		StartCursor: notionapi.Cursor(cursor),
		PageSize:    100,
	})
	if err != nil {
		return nil, "", wrapErr("list child blocks", err)
	}

	ids := make([]string, 0, len(resp.Results))
	for _, b := range resp.Results {
		ids = append(ids, string(b.GetID()))
	}
	next := ""
	if resp.HasMore {
		next = string(resp.NextCursor)
	}
	return ids, next, nil
}

func (c *Client) DeleteBlock(ctx context.Context, blockID string) error {
	if _, err := c.api.Block.Delete(ctx, notionapi.BlockID(blockID)); err != nil {
		return wrapErr("delete block", err)
	}
	return nil
}
