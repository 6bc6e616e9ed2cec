package syncclient

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/diagram"
	"datadesigner/internal/dto"
)

// Elements stored without coordinates are dropped somewhere in this box.
const (
	fallbackWidth  = 600.0
	fallbackHeight = 400.0
)

func randomPosition() (float64, float64) {
	return rand.Float64() * fallbackWidth, rand.Float64() * fallbackHeight
}

// Load fetches a project and replaces the contents of store with it.
// NotFound and Unauthorized failures are returned as is, never retried.
func (c *Client) Load(ctx context.Context, projectID string, store *diagram.Store) (*dto.Project, error) {
	var project dto.Project
	if err := c.do(ctx, http.MethodGet, "/project/"+projectID, nil, &project); err != nil {
		return nil, err
	}

	store.Replace(c.toSnapshot(project.Elements, project.Connections))
	c.rememberVersion(projectID, project.Version)

	c.log.WithFields(logrus.Fields{
		"project_id":  projectID,
		"elements":    len(project.Elements),
		"connections": len(project.Connections),
	}).Debug("project loaded")
	return &project, nil
}

// Save sends everything in store as one snapshot. The store is copied when
// Save is called; edits made while the request is in flight go out with
// the next save.
func (c *Client) Save(ctx context.Context, projectID string, store *diagram.Store) (*dto.SyncResult, error) {
	req := fromSnapshot(store.Snapshot())
	if c.optimistic {
		c.mu.Lock()
		if v, ok := c.versions[projectID]; ok {
			req.BaseVersion = &v
		}
		c.mu.Unlock()
	}
	if err := dto.Validate(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "snapshot failed validation", err)
	}
	if err := dto.CheckSnapshot(req.Elements, req.Connections); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var res dto.SyncResult
	if err := c.do(ctx, http.MethodPost, "/project/"+projectID+"/sync", req, &res); err != nil {
		return nil, err
	}
	c.rememberVersion(projectID, res.Version)

	c.log.WithFields(logrus.Fields{
		"project_id": projectID,
		"version":    res.Version,
	}).Debug("project saved")
	return &res, nil
}

// AutoSave calls Save every interval until ctx is done. Failed saves are
// handed to onError and the loop keeps going; nothing is retried early.
func (c *Client) AutoSave(ctx context.Context, projectID string, store *diagram.Store, interval time.Duration, onError func(error)) {
	if interval <= 0 {
		interval = DefaultAutoSaveInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := c.Save(ctx, projectID, store); err != nil {
				if ctx.Err() != nil {
					return
				}
				c.log.WithError(err).WithField("project_id", projectID).Warn("autosave failed")
				if onError != nil {
					onError(err)
				}
			}
		}
	}
}

func (c *Client) rememberVersion(projectID string, version uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[projectID] = version
}

func (c *Client) toSnapshot(elements []dto.Element, connections []dto.Connection) diagram.Snapshot {
	snap := diagram.Snapshot{
		Elements:    make([]diagram.Element, 0, len(elements)),
		Connections: make([]diagram.Connection, 0, len(connections)),
	}
	for _, e := range elements {
		el := diagram.Element{ID: e.ID, Kind: e.Type, Name: e.Name, Width: e.Width, Height: e.Height}
		if e.X != nil && e.Y != nil {
			el.X, el.Y = *e.X, *e.Y
		} else {
			el.X, el.Y = c.randPos()
		}
		for _, f := range e.Fields {
			el.Fields = append(el.Fields, diagram.Field{ID: f.ID, Name: f.Name, Type: diagram.FieldType(f.Type), IsPrimary: f.IsPrimary})
		}
		snap.Elements = append(snap.Elements, el)
	}
	for _, cn := range connections {
		snap.Connections = append(snap.Connections, diagram.Connection{
			ID:          cn.ID,
			From:        cn.From,
			To:          cn.To,
			FromField:   cn.FromField,
			ToField:     cn.ToField,
			Kind:        diagram.RelationKind(cn.Type),
			Color:       cn.Color,
			StrokeWidth: cn.StrokeWidth,
			Label:       cn.Label,
		})
	}
	return snap
}

func fromSnapshot(snap diagram.Snapshot) dto.SyncRequest {
	req := dto.SyncRequest{
		Elements:    make([]dto.Element, 0, len(snap.Elements)),
		Connections: make([]dto.Connection, 0, len(snap.Connections)),
	}
	for _, el := range snap.Elements {
		x, y := el.X, el.Y
		e := dto.Element{
			ID:     el.ID,
			Type:   el.Kind,
			Name:   el.Name,
			X:      &x,
			Y:      &y,
			Width:  el.Width,
			Height: el.Height,
			Fields: make([]dto.Field, 0, len(el.Fields)),
		}
		for _, f := range el.Fields {
			e.Fields = append(e.Fields, dto.Field{ID: f.ID, Name: f.Name, Type: string(f.Type), IsPrimary: f.IsPrimary})
		}
		req.Elements = append(req.Elements, e)
	}
	for _, cn := range snap.Connections {
		req.Connections = append(req.Connections, dto.Connection{
			ID:          cn.ID,
			From:        cn.From,
			To:          cn.To,
			FromField:   cn.FromField,
			ToField:     cn.ToField,
			Type:        string(cn.Kind),
			Color:       cn.Color,
			StrokeWidth: cn.StrokeWidth,
			Label:       cn.Label,
		})
	}
	return req
}
