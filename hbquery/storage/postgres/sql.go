package postgres

import "github.com/nonibytes/hbquery/hbquery/storage"

const ddlBase = `
CREATE TABLE IF NOT EXISTS meta (
  key   TEXT PRIMARY KEY,
  value TEXT
);

CREATE TABLE IF NOT EXISTS filters (
  name        TEXT PRIMARY KEY,
  query       TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  updated_at  BIGINT NOT NULL
);
`

var SQLTemplates = storage.SQL{
	GetMeta:     "SELECT value FROM meta WHERE key = $1",
	SetMeta:     "INSERT INTO meta(key,value) VALUES($1,$2) ON CONFLICT(key) DO UPDATE SET value=EXCLUDED.value",
	ListFilters: "SELECT name, query, description FROM filters ORDER BY name",
	GetFilter:   "SELECT name, query, description FROM filters WHERE name = $1",
	UpsertFilter: `INSERT INTO filters(name, query, description, updated_at)
	        VALUES($1, $2, $3, $4)
	        ON CONFLICT(name) DO UPDATE
	          SET query=EXCLUDED.query,
	              description=EXCLUDED.description,
	              updated_at=EXCLUDED.updated_at`,
	DeleteFilter: "DELETE FROM filters WHERE name = $1",
}
