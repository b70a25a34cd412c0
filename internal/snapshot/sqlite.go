// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citation-graph/pkg/types"
)

const (
	roleSeed    = "seed"
	roleRelated = "related"
)

var schema = []string{
	`CREATE TABLE papers (
		position INTEGER PRIMARY KEY,
		role TEXT NOT NULL,
		arxiv_id TEXT,
		paper_id_s2 TEXT,
		title TEXT NOT NULL,
		abstract TEXT,
		authors TEXT,
		published_date TEXT,
		pdf_url TEXT,
		citation_count INTEGER,
		year INTEGER
	)`,
	`CREATE TABLE entities (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		arxiv_id TEXT
	)`,
	`CREATE TABLE triples (
		position INTEGER PRIMARY KEY,
		head TEXT NOT NULL,
		relation TEXT NOT NULL,
		tail TEXT NOT NULL
	)`,
	`CREATE INDEX idx_triples_head ON triples(head)`,
	`CREATE INDEX idx_triples_tail ON triples(tail)`,
	`CREATE TABLE meta (
		key TEXT PRIMARY KEY,
		value TEXT
	)`,
}

// WriteSQLite writes doc to a fresh SQLite file at path. The database is
// built in a temp file and renamed over any existing snapshot.
func WriteSQLite(ctx context.Context, path string, doc *types.GraphDocument) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := buildSQLite(ctx, tmpPath, doc); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming snapshot into place: %w", err)
	}
	return nil
}

func buildSQLite(ctx context.Context, path string, doc *types.GraphDocument) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	paperStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (position, role, arxiv_id, paper_id_s2, title, abstract, authors, published_date, pdf_url, citation_count, year)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing paper insert: %w", err)
	}
	defer paperStmt.Close()

	insertPaper := func(pos int, role string, p types.Paper) error {
		authors, err := json.Marshal(nonNilStrings(p.Authors))
		if err != nil {
			return fmt.Errorf("encoding authors: %w", err)
		}
		_, err = paperStmt.ExecContext(ctx, pos, role, p.ArxivID, p.S2ID, p.Title, p.Abstract,
			string(authors), p.PublishedDate, p.PDFURL, optInt(p.CitationCount), optInt(p.Year))
		if err != nil {
			return fmt.Errorf("inserting paper %q: %w", p.Title, err)
		}
		return nil
	}
	if err := insertPaper(0, roleSeed, doc.PaperMetadata); err != nil {
		return err
	}
	for i, p := range doc.RelatedPapers {
		if err := insertPaper(i+1, roleRelated, p); err != nil {
			return err
		}
	}

	for i, e := range doc.KnowledgeGraph.Entities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entities (position, name, type, arxiv_id) VALUES (?, ?, ?, ?)`,
			i, e.Name, e.Type, e.ArxivID); err != nil {
			return fmt.Errorf("inserting entity %q: %w", e.Name, err)
		}
	}
	for i, t := range doc.KnowledgeGraph.Triples {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO triples (position, head, relation, tail) VALUES (?, ?, ?, ?)`,
			i, t.Head, t.Relation, t.Tail); err != nil {
			return fmt.Errorf("inserting triple: %w", err)
		}
	}

	meta := map[string]string{
		"references": strconv.Itoa(doc.RelatedPapersCount.References),
		"citations":  strconv.Itoa(doc.RelatedPapersCount.Citations),
	}
	for key, v := range map[string]*int{"top_n": doc.TopN, "top_k": doc.TopK, "depth": doc.Depth} {
		if v != nil {
			meta[key] = strconv.Itoa(*v)
		}
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("inserting meta %s: %w", k, err)
		}
	}

	return tx.Commit()
}

// LoadSQLite reads a snapshot written by WriteSQLite.
func LoadSQLite(ctx context.Context, path string) (*types.GraphDocument, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	doc := &types.GraphDocument{}

	rows, err := db.QueryContext(ctx,
		`SELECT role, arxiv_id, paper_id_s2, title, abstract, authors, published_date, pdf_url, citation_count, year
		 FROM papers ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	doc.RelatedPapers = []types.Paper{}
	for rows.Next() {
		var (
			role, authors string
			p             types.Paper
			count, year   sql.NullInt64
		)
		if err := rows.Scan(&role, &p.ArxivID, &p.S2ID, &p.Title, &p.Abstract, &authors,
			&p.PublishedDate, &p.PDFURL, &count, &year); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		if err := json.Unmarshal([]byte(authors), &p.Authors); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decoding authors of %q: %w", p.Title, err)
		}
		if count.Valid {
			p.CitationCount = types.IntPtr(int(count.Int64))
		}
		if year.Valid {
			p.Year = types.IntPtr(int(year.Int64))
		}
		if role == roleSeed {
			doc.PaperMetadata = p
		} else {
			doc.RelatedPapers = append(doc.RelatedPapers, p)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating papers: %w", err)
	}

	doc.KnowledgeGraph.Entities = []types.Entity{}
	rows, err = db.QueryContext(ctx, `SELECT name, type, arxiv_id FROM entities ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	for rows.Next() {
		var e types.Entity
		if err := rows.Scan(&e.Name, &e.Type, &e.ArxivID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		doc.KnowledgeGraph.Entities = append(doc.KnowledgeGraph.Entities, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}

	doc.KnowledgeGraph.Triples = []types.Triple{}
	rows, err = db.QueryContext(ctx, `SELECT head, relation, tail FROM triples ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying triples: %w", err)
	}
	for rows.Next() {
		var t types.Triple
		if err := rows.Scan(&t.Head, &t.Relation, &t.Tail); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning triple: %w", err)
		}
		doc.KnowledgeGraph.Triples = append(doc.KnowledgeGraph.Triples, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating triples: %w", err)
	}

	rows, err = db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("querying meta: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning meta: %w", err)
		}
		switch k {
		case "references":
			doc.RelatedPapersCount.References, _ = strconv.Atoi(v)
		case "citations":
			doc.RelatedPapersCount.Citations, _ = strconv.Atoi(v)
		case "top_n":
			doc.TopN = parseOptInt(v)
		case "top_k":
			doc.TopK = parseOptInt(v)
		case "depth":
			doc.Depth = parseOptInt(v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating meta: %w", err)
	}
	return doc, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
