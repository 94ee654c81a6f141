// Package digest rebuilds the Notion page that lists every course's syllabus
// and start-here material.
package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"canvas-notion-sync/internal/classify"
	"canvas-notion-sync/internal/config"
	"canvas-notion-sync/internal/domain"
	"canvas-notion-sync/internal/logger"
	"canvas-notion-sync/internal/mappers"
	"canvas-notion-sync/internal/providers"
	"canvas-notion-sync/internal/ratelimit"
)

const (
	// PreviewLen is the rune length of body previews in bullets.
	PreviewLen = 120
	// FileSearchTerm is sent to Canvas' file search.
	FileSearchTerm = "syllab"
)

// Builder holds everything one digest run needs. Now defaults to time.Now.
type Builder struct {
	Source        providers.Source
	Dest          providers.Destination
	Fields        config.FieldNames
	CanvasBaseURL string
	// PageID pins the digest page. When empty the page is found by
	// MasterTitle in the database, or created there.
	PageID      string
	MasterTitle string
	Pacer       ratelimit.Pacer
	Log         logger.Logger
	Now         func() time.Time
}

// Result summarises one digest run.
type Result struct {
	PageID         string
	BlocksCleared  int
	BlocksWritten  int
	CoursesSkipped int
}

// Run clears the digest page and rewrites it from courses. A course whose
// Canvas content cannot be fetched is logged and left out; the rest of the
// digest is still written.
func (b *Builder) Run(ctx context.Context, courses []domain.CourseRef) (Result, error) {
	var res Result

	pageID, err := b.resolvePage(ctx)
	if err != nil {
		return res, err
	}
	res.PageID = pageID

	cleared, err := b.clear(ctx, pageID)
	res.BlocksCleared = cleared
	if err != nil {
		return res, err
	}

	blocks := []domain.Block{domain.Heading(Heading(b.now()))}
	for _, c := range courses {
		if c.ID == 0 {
			continue
		}
		found, err := b.courseBlocks(ctx, c)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.CoursesSkipped++
			b.Log.Warn("Digest skipped course",
				logger.String("course", c.DisplayName()),
				logger.Int64("course_id", c.ID),
				logger.Error(err),
			)
		} else {
			blocks = append(blocks, found...)
		}

		if err := b.Pacer.BetweenCourses(ctx); err != nil {
			return res, err
		}
	}

	if err := b.Dest.AppendBlocks(ctx, pageID, blocks); err != nil {
		return res, fmt.Errorf("digest: append to %s: %w", pageID, err)
	}
	res.BlocksWritten = len(blocks)

	b.Log.Info("Digest page updated",
		logger.String("page_id", pageID),
		logger.Int("blocks", len(blocks)),
		logger.Int("courses_skipped", res.CoursesSkipped),
	)
	return res, nil
}

// Heading is the first block of every digest.
func Heading(t time.Time) string {
	return "Sync run — " + t.UTC().Format("2006-01-02 15:04") + " UTC"
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Builder) resolvePage(ctx context.Context) (string, error) {
	if b.PageID != "" {
		return b.PageID, nil
	}

	ids, err := b.Dest.QueryPages(ctx, mappers.TitleFilter(b.MasterTitle, b.Fields), 1)
	if err != nil {
		return "", fmt.Errorf("digest: find page %q: %w", b.MasterTitle, err)
	}
	if len(ids) > 0 {
		return ids[0], nil
	}

	id, err := b.Dest.CreatePage(ctx, domain.Properties{b.Fields.Title: domain.TitleValue(b.MasterTitle)})
	if err != nil {
		return "", fmt.Errorf("digest: create page %q: %w", b.MasterTitle, err)
	}
	b.Log.Info("Created digest page", logger.String("page_id", id), logger.String("title", b.MasterTitle))
	return id, nil
}

// clear deletes every child block of the page. Blocks that are already gone
// or archived are skipped.
func (b *Builder) clear(ctx context.Context, pageID string) (int, error) {
	deleted := 0
	cursor := ""
	for {
		ids, next, err := b.Dest.ListChildBlocks(ctx, pageID, cursor)
		if err != nil {
			return deleted, fmt.Errorf("digest: list blocks of %s: %w", pageID, err)
		}
		for _, id := range ids {
			err := b.Dest.DeleteBlock(ctx, id)
			switch {
			case err == nil:
				deleted++
			case errors.Is(err, providers.ErrNotFound):
				b.Log.Debug("Block already gone", logger.String("block_id", id))
			default:
				return deleted, fmt.Errorf("digest: delete block %s: %w", id, err)
			}
		}
		if next == "" {
			return deleted, nil
		}
		cursor = next
	}
}

// courseBlocks collects the course's bullets in a fixed order: syllabus,
// front page, pages, module items, files.
func (b *Builder) courseBlocks(ctx context.Context, c domain.CourseRef) ([]domain.Block, error) {
	name := c.DisplayName()
	var arts []domain.ClassifiedArtifact

	body, err := b.Source.GetSyllabusBody(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("syllabus: %w", err)
	}
	if body != "" {
		arts = append(arts, domain.ClassifiedArtifact{
			Kind:    domain.ArtifactSyllabus,
			Course:  name,
			Preview: classify.PlainTextPreview(body, PreviewLen),
			URL:     fmt.Sprintf("%s/courses/%d/assignments/syllabus", b.CanvasBaseURL, c.ID),
		})
	}

	front, err := b.Source.GetFrontPage(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("front page: %w", err)
	}
	if front != nil && isFrontPageIntro(front.Title) {
		arts = append(arts, domain.ClassifiedArtifact{
			Kind:    domain.ArtifactFrontPage,
			Course:  name,
			Title:   front.Title,
			Preview: classify.PlainTextPreview(front.BodyText(), PreviewLen),
			URL:     front.HTMLURL,
		})
	}

	pages, err := b.Source.ListPagesWithBodies(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("pages: %w", err)
	}
	for _, p := range pages {
		if !classify.LooksLikeOrientation(p.Title) && !classify.LooksLikeSyllabus(p.Title) {
			continue
		}
		arts = append(arts, domain.ClassifiedArtifact{
			Kind:    domain.ArtifactPage,
			Course:  name,
			Title:   p.Title,
			Preview: classify.PlainTextPreview(p.BodyText(), PreviewLen),
			URL:     p.HTMLURL,
		})
	}

	items, err := b.Source.ListModuleItems(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}
	for _, it := range items {
		if !classify.LooksLikeOrientation(it.Title) &&
			!classify.LooksLikeSyllabus(it.Title) &&
			!classify.LooksLikeOrientation(it.ModuleName) {
			continue
		}
		arts = append(arts, domain.ClassifiedArtifact{
			Kind:   domain.ArtifactModule,
			Course: name,
			Title:  it.Title,
			URL:    it.WebURL(),
		})
	}

	files, err := b.Source.SearchFiles(ctx, c.ID, FileSearchTerm)
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	for _, f := range files {
		fname := f.Name()
		if !classify.LooksLikeSyllabus(fname) && !classify.HasDocumentExtension(fname) {
			continue
		}
		arts = append(arts, domain.ClassifiedArtifact{
			Kind:   domain.ArtifactFile,
			Course: name,
			Title:  fname,
			URL:    f.URL,
		})
	}

	blocks := make([]domain.Block, 0, len(arts))
	for _, a := range arts {
		blocks = append(blocks, a.Block())
	}
	return blocks, nil
}

func isFrontPageIntro(title string) bool {
	return classify.LooksLikeOrientation(title) ||
		classify.LooksLikeSyllabus(title) ||
		strings.Contains(classify.Normalize(title), "start")
}
