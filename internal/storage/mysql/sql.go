package mysql

// Events are append-only: rows already stored are filtered out before the
// insert, so a duplicate key here means a concurrent writer and fails the tx.
const insertEventsPrefix = "INSERT INTO events\n  (id, entity_id, entity_type, event_name, data)\nVALUES "

// Locks the stored rows of a window until the insert commits.
const selectEventsPrefix = "SELECT id, entity_id, entity_type, event_name, data\nFROM events\nWHERE id IN ("

const selectEventsSuffix = ") FOR UPDATE"

const upsertSnapshotsPrefix = "INSERT INTO snapshots\n  (entity_id, entity_type, last_event_id, data)\nVALUES "

// Use VALUES(col) for broad compatibility.
const upsertSnapshotsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  entity_type   = VALUES(entity_type),\n" +
	"  last_event_id = VALUES(last_event_id),\n" +
	"  data          = VALUES(data)\n"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getSnapshotSQL = `
SELECT entity_id, entity_type, last_event_id, data
FROM snapshots
WHERE entity_type = ? AND entity_id = ?
`

// Keyset pagination on (entity_type, last_event_id); one extra row tells
// whether another page exists.
const listSnapshotsSQL = `
SELECT entity_id, entity_type, last_event_id, data
FROM snapshots
WHERE entity_type = ? AND last_event_id > ?
ORDER BY last_event_id
LIMIT ?
`
