package sync

import (
	"context"
	"fmt"

	"canvas-notion-sync/internal/config"
	"canvas-notion-sync/internal/domain"
	"canvas-notion-sync/internal/logger"
	"canvas-notion-sync/internal/mappers"
	"canvas-notion-sync/internal/providers"
	"canvas-notion-sync/internal/ratelimit"
)

// Action is what an upsert did to the destination.
type Action int

const (
	ActionCreated Action = iota + 1
	ActionUpdated
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionUpdated:
		return "updated"
	default:
		return "none"
	}
}

// Upserter writes assignment records into the Notion database keyed by the
// Canvas ID column.
type Upserter struct {
	Dest   providers.Destination
	Fields config.FieldNames
	Pacer  ratelimit.Pacer
	Log    logger.Logger
}

// Upsert updates the page carrying rec.ID or creates one. It waits on the
// pacer after the write; a pacer error is returned with the completed action.
func (u *Upserter) Upsert(ctx context.Context, rec domain.AssignmentRecord) (Action, error) {
	ids, err := u.Dest.QueryPages(ctx, mappers.IdentityFilter(rec.ID, u.Fields), 1)
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", rec.ID, err)
	}

	props := mappers.ToNotionProperties(rec, u.Fields)
	var action Action
	if len(ids) > 0 {
		if err := u.Dest.UpdatePage(ctx, ids[0], props); err != nil {
			return 0, fmt.Errorf("update %s: %w", rec.ID, err)
		}
		action = ActionUpdated
		u.Log.Info("Updated: "+rec.Course+" • "+rec.Name, logger.String("page_id", ids[0]), logger.String("canvas_id", rec.ID))
	} else {
		id, err := u.Dest.CreatePage(ctx, props)
		if err != nil {
			return 0, fmt.Errorf("create %s: %w", rec.ID, err)
		}
		action = ActionCreated
		u.Log.Info("Created: "+rec.Course+" • "+rec.Name, logger.String("page_id", id), logger.String("canvas_id", rec.ID))
	}

	return action, u.Pacer.AfterWrite(ctx)
}
