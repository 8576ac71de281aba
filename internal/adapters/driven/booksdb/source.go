// Package booksdb extracts raw annotation records from the reading
// application's local SQLite store. Column names drifted across application
// versions, so the query is built against whichever aliases the attached
// databases actually carry.
package booksdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pagemark-labs/pagemark-cli/internal/core/domain"
	"github.com/pagemark-labs/pagemark-cli/internal/core/ports/driven"
	"github.com/pagemark-labs/pagemark-cli/internal/logger"
)

// Environment overrides for the database directories.
const (
	EnvAnnotationDBDir = "PAGEMARK_ANNOTATION_DB_DIR"
	EnvLibraryDBDir    = "PAGEMARK_LIBRARY_DB_DIR"
)

// Required tables identifying a usable database file.
const (
	annotationTable = "ZAEANNOTATION"
	libraryTable    = "ZBKLIBRARYASSET"
)

// defaultAnnotationDirs returns the reading application's annotation
// database container directories.
func defaultAnnotationDirs(home string) []string {
	return []string{
		filepath.Join(home, "Library/Containers/com.apple.iBooksX/Data/Documents/AEAnnotation"),
		filepath.Join(home, "Library/Containers/com.apple.BKAgentService/Data/Documents/AEAnnotation"),
	}
}

// defaultLibraryDirs returns the library database container directories.
func defaultLibraryDirs(home string) []string {
	return []string{
		filepath.Join(home, "Library/Containers/com.apple.iBooksX/Data/Documents/BKLibrary"),
		filepath.Join(home, "Library/Containers/com.apple.BKAgentService/Data/Documents/BKLibrary"),
	}
}

// Ensure Source implements the interface.
var _ driven.AnnotationSource = (*Source)(nil)

// Source reads annotation records from the newest usable database files.
type Source struct {
	annotationDirs []string
	libraryDirs    []string
}

// NewSource creates an annotation source. Explicit directories take
// precedence, then the environment overrides, then the platform defaults.
func NewSource(annotationDir, libraryDir string) *Source {
	return &Source{
		annotationDirs: resolveDirs(annotationDir, EnvAnnotationDBDir, defaultAnnotationDirs),
		libraryDirs:    resolveDirs(libraryDir, EnvLibraryDBDir, defaultLibraryDirs),
	}
}

func resolveDirs(explicit, envKey string, defaults func(home string) []string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	if env := os.Getenv(envKey); env != "" {
		return []string{env}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return defaults(home)
}

// AnnotationDirs returns the directories searched for annotation databases.
// Used by the watch command to know what to observe.
func (s *Source) AnnotationDirs() []string {
	return s.annotationDirs
}

// Fetch locates the databases, attaches the library to the annotation store
// and returns every non-deleted annotation row joined with book metadata.
func (s *Source) Fetch(ctx context.Context) ([]domain.AnnotationRecord, error) {
	annotationFile, err := findDatabase(s.annotationDirs, annotationTable)
	if err != nil {
		return nil, err
	}
	libraryFile, err := findDatabase(s.libraryDirs, libraryTable)
	if err != nil {
		return nil, err
	}
	logger.Debug("Annotation database: %s", annotationFile)
	logger.Debug("Library database: %s", libraryFile)

	db, err := sql.Open("sqlite", "file:"+annotationFile+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening annotation database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "ATTACH DATABASE ? AS books", libraryFile); err != nil {
		return nil, fmt.Errorf("attaching library database: %w", err)
	}

	annotationCols, err := tableColumns(ctx, db, "", annotationTable)
	if err != nil {
		return nil, err
	}
	libraryCols, err := tableColumns(ctx, db, "books", libraryTable)
	if err != nil {
		return nil, err
	}

	query, err := buildNoteQuery(annotationCols, libraryCols)
	if err != nil {
		return nil, err
	}
	logger.Debug("Note query:\n%s", query)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying annotations: %w", err)
	}
	defer rows.Close()

	var records []domain.AnnotationRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			assetID                                             string
			title, author, location, selected, note, represent sql.NullString
			chapter, style                                      sql.NullString
			modified                                            sql.NullFloat64
		)
		if err := rows.Scan(&assetID, &title, &author, &location, &selected,
			&note, &represent, &chapter, &style, &modified); err != nil {
			return nil, fmt.Errorf("scanning annotation row: %w", err)
		}

		rec := domain.AnnotationRecord{
			AssetID:       assetID,
			Title:         title.String,
			Author:        author.String,
			Location:      location.String,
			SelectedText:  selected.String,
			Note:          note.String,
			RepresentText: represent.String,
			Chapter:       chapter.String,
			Style:         style.String,
		}
		if modified.Valid {
			v := modified.Float64
			rec.ModifiedDate = &v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating annotation rows: %w", err)
	}

	logger.Info("Fetched %d annotation records", len(records))
	return records, nil
}

// findDatabase returns the most recently modified *.sqlite file under dirs
// that contains the required table.
func findDatabase(dirs []string, requiredTable string) (string, error) {
	var candidates []string
	for _, dir := range dirs {
		matches, err := filepath.Glob(filepath.Join(dir, "*.sqlite"))
		if err != nil {
			continue
		}
		candidates = append(candidates, matches...)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no *.sqlite files under %v", domain.ErrNoDatabase, dirs)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return modTime(candidates[i]).After(modTime(candidates[j]))
	})

	for _, path := range candidates {
		ok, err := hasTable(path, requiredTable)
		if err != nil {
			logger.Debug("Skipping %s: %v", path, err)
			continue
		}
		if ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no database contains table %s", domain.ErrNoDatabase, requiredTable)
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// hasTable opens path read-only and checks for the given table.
func hasTable(path, table string) (bool, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return false, err
	}
	defer db.Close()

	var name string
	err = db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// tableColumns lists the column names of a table, optionally in an attached
// schema.
func tableColumns(ctx context.Context, db *sql.DB, schema, table string) ([]string, error) {
	pragma := fmt.Sprintf("PRAGMA table_info(%s)", table)
	if schema != "" {
		pragma = fmt.Sprintf("PRAGMA %s.table_info(%s)", schema, table)
	}

	rows, err := db.QueryContext(ctx, pragma)
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid          int
			name, ctype  string
			notNull, pk  int
			defaultValue sql.NullString
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &defaultValue, &pk); err != nil {
			return nil, fmt.Errorf("scanning column info: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}
