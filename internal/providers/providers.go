package providers

import (
	"context"
	"errors"

	"canvas-notion-sync/internal/domain"
	"canvas-notion-sync/internal/providers/canvas"
)

// ErrNotFound matches destination errors for records that no longer exist
// (deleted or archived).
var ErrNotFound = errors.New("not found")

// Source is the read-only Canvas side of the sync.
type Source interface {
	ListEnrolledCourses(ctx context.Context) ([]canvas.Course, error)
	ListActiveCourses(ctx context.Context) ([]canvas.Course, error)
	ListAssignments(ctx context.Context, courseID int64) ([]canvas.Assignment, error)
	GetSyllabusBody(ctx context.Context, courseID int64) (string, error)
	GetFrontPage(ctx context.Context, courseID int64) (*canvas.Page, error)
	ListPagesWithBodies(ctx context.Context, courseID int64) ([]canvas.Page, error)
	ListModuleItems(ctx context.Context, courseID int64) ([]canvas.ModuleItem, error)
	SearchFiles(ctx context.Context, courseID int64, term string) ([]canvas.File, error)
}

// Destination is the Notion side: one database of assignment pages plus the
// block children of the digest page.
type Destination interface {
	// QueryPages returns the IDs of up to limit database pages matching f.
	QueryPages(ctx context.Context, f domain.Filter, limit int) ([]string, error)
	CreatePage(ctx context.Context, props domain.Properties) (string, error)
	UpdatePage(ctx context.Context, pageID string, props domain.Properties) error

	AppendBlocks(ctx context.Context, pageID string, blocks []domain.Block) error
	// ListChildBlocks returns one page of child block IDs and the cursor of
	// the next page ("" when done).
	ListChildBlocks(ctx context.Context, pageID, cursor string) ([]string, string, error)
	DeleteBlock(ctx context.Context, blockID string) error
}

var (
	_ Source = (*canvas.Client)(nil)
)
