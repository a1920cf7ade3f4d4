// Package script renders event batches as seed scripts: one SQL file that
// appends the events and one mongosh file that inserts their snapshots.
package script

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"tour_dataset/internal/domain"
)

// FirstIndex numbers the first batch file; lower numbers are left for schema scripts.
const FirstIndex = 50

type Writer struct {
	dir      string
	database string
}

func New(dir, database string) *Writer {
	return &Writer{dir: dir, database: database}
}

// WriteBatches writes sql/NN_name.sql and mongo/NN_name.js for every batch,
// NN counting up from FirstIndex in batch order.
func (w *Writer) WriteBatches(batches []domain.EventBatch) error {
	sqlDir := filepath.Join(w.dir, "sql")
	mongoDir := filepath.Join(w.dir, "mongo")
	for _, d := range []string{sqlDir, mongoDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}

	for i, b := range batches {
		prefix := fmt.Sprintf("%02d_%s", FirstIndex+i, b.Name)
		if err := writeFile(filepath.Join(sqlDir, prefix+".sql"), func(bw *bufio.Writer) error {
			return writeSQL(bw, b)
		}); err != nil {
			return fmt.Errorf("sql %s: %w", b.Name, err)
		}
		if err := writeFile(filepath.Join(mongoDir, prefix+".js"), func(bw *bufio.Writer) error {
			return w.writeMongo(bw, b)
		}); err != nil {
			return fmt.Errorf("mongo %s: %w", b.Name, err)
		}
		log.Debug().Str("batch", b.Name).Int("events", len(b.Events)).Msg("scripts written")
	}
	return nil
}

func writeFile(path string, fill func(*bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := fill(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeSQL(bw *bufio.Writer, b domain.EventBatch) error {
	fmt.Fprintf(bw, "-- Sample %s data\n-- @generated", b.Name)
	for _, ev := range b.Events {
		data, err := encodeJSON(ev.Data, "")
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "\n\nINSERT INTO events (id, entity_id, event_name, data)\nVALUES (\n    %d,\n    %s,\n    %s,\n    %s\n);\n",
			ev.ID, quoteLiteral(ev.EntityID), quoteLiteral(ev.Name), quoteLiteral(data))
	}
	return nil
}

func (w *Writer) writeMongo(bw *bufio.Writer, b domain.EventBatch) error {
	fmt.Fprintf(bw, "// Sample %s data\n// @generated\ndb = db.getSiblingDB(%q);\n", b.Name, w.database)
	for _, ev := range b.Events {
		doc, err := encodeJSON(ev.Snapshot(), "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "\ndb.snapshots.insertOne(%s);\n", doc)
	}
	return nil
}

func encodeJSON(v any, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// quoteLiteral renders s as a Postgres string literal. Quotes are doubled;
// a string containing backslashes gets the E prefix and doubled backslashes.
func quoteLiteral(s string) string {
	q := strings.ReplaceAll(s, "'", "''")
	if strings.Contains(s, `\`) {
		return "E'" + strings.ReplaceAll(q, `\`, `\\`) + "'"
	}
	return "'" + q + "'"
}
