package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Row is one committed object as stored.
type Row struct {
	Kind    Kind            `json:"kind"`
	SiteID  int64           `json:"site_id"`
	Key     string          `json:"key"`
	Parent  string          `json:"parent,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// LinkRow is one committed relationship, named by scope keys rather than
// object IDs so dumps stay comparable across runs.
type LinkRow struct {
	Relation Relation `json:"relation"`
	Owner    string   `json:"owner"`
	Member   string   `json:"member"`
}

// Snapshot is the committed content of the cache.
type Snapshot struct {
	Objects []Row     `json:"objects"`
	Links   []LinkRow `json:"links"`
}

// Snapshot reads every committed row ordered by kind, site and key. Pending
// changes of open contexts are not included.
func (p *Provider) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Objects: []Row{}, Links: []LinkRow{}}

	rows, err := p.db.QueryContext(ctx, `
		SELECT o.kind, o.site_id, o.entity_key,
		       COALESCE(po.kind || ':' || po.site_id || ':' || po.entity_key, ''),
		       o.payload
		FROM objects o
		LEFT JOIN objects po ON po.id = o.parent_id
		ORDER BY o.kind, o.site_id, o.entity_key`)
	if err != nil {
		return nil, fmt.Errorf("snapshot objects: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r Row
		var payload string
		if err := rows.Scan(&r.Kind, &r.SiteID, &r.Key, &r.Parent, &payload); err != nil {
			return nil, fmt.Errorf("scan object: %w", err)
		}
		r.Payload = json.RawMessage(payload)
		snap.Objects = append(snap.Objects, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot objects: %w", err)
	}
	rows.Close()

	links, err := p.db.QueryContext(ctx, `
		SELECT l.relation,
		       o.kind || ':' || o.site_id || ':' || o.entity_key,
		       m.kind || ':' || m.site_id || ':' || m.entity_key
		FROM links l
		JOIN objects o ON o.id = l.owner_id
		JOIN objects m ON m.id = l.member_id
		ORDER BY 1, 2, 3`)
	if err != nil {
		return nil, fmt.Errorf("snapshot links: %w", err)
	}
	defer links.Close()
	for links.Next() {
		var l LinkRow
		if err := links.Scan(&l.Relation, &l.Owner, &l.Member); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		snap.Links = append(snap.Links, l)
	}
	if err := links.Err(); err != nil {
		return nil, fmt.Errorf("snapshot links: %w", err)
	}
	return snap, nil
}

// CountByKind returns the number of committed rows of every kind present.
func (p *Provider) CountByKind(ctx context.Context) (map[Kind]int, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM objects GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("count objects: %w", err)
	}
	defer rows.Close()

	counts := make(map[Kind]int)
	for rows.Next() {
		var k Kind
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[k] = n
	}
	return counts, rows.Err()
}
