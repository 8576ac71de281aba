package booksdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemark-labs/pagemark-cli/internal/core/domain"
)

// createFixtureDB builds a SQLite file and runs the given statements.
func createFixtureDB(t *testing.T, path string, statements ...string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func createAnnotationDB(t *testing.T, path string) {
	t.Helper()
	createFixtureDB(t, path,
		`CREATE TABLE ZAEANNOTATION (
			Z_PK INTEGER PRIMARY KEY,
			ZANNOTATIONASSETID TEXT,
			ZANNOTATIONLOCATION TEXT,
			ZANNOTATIONSELECTEDTEXT TEXT,
			ZANNOTATIONNOTE TEXT,
			ZANNOTATIONREPRESENTATIVETEXT TEXT,
			ZFUTUREPROOFING5 TEXT,
			ZANNOTATIONSTYLE TEXT,
			ZANNOTATIONMODIFICATIONDATE REAL,
			ZANNOTATIONDELETED INTEGER,
			ZPLLOCATIONRANGESTART INTEGER
		)`,
		`INSERT INTO ZAEANNOTATION
			(ZANNOTATIONASSETID, ZANNOTATIONLOCATION, ZANNOTATIONSELECTEDTEXT,
			 ZANNOTATIONNOTE, ZANNOTATIONMODIFICATIONDATE, ZANNOTATIONDELETED,
			 ZPLLOCATIONRANGESTART)
		 VALUES
			('ABC123', 'epubcfi(/6/4,/1:0,/1:10)', 'a highlight', NULL, 700000000.5, 0, 10),
			('ABC123', 'epubcfi(/6/8,/1:0,/1:4)', NULL, 'a note', NULL, 0, 20),
			('ABC123', 'epubcfi(/6/9,/1:0,/1:4)', 'deleted one', NULL, NULL, 1, 30),
			('DEF456', 'page 2', 'other book', NULL, NULL, 0, 5),
			('GHI789', 'page 1', NULL, NULL, NULL, 0, 1)`,
	)
}

func createLibraryDB(t *testing.T, path string) {
	t.Helper()
	createFixtureDB(t, path,
		`CREATE TABLE ZBKLIBRARYASSET (
			Z_PK INTEGER PRIMARY KEY,
			ZASSETID TEXT,
			ZEPUBID TEXT,
			ZTITLE TEXT,
			ZAUTHOR TEXT
		)`,
		`INSERT INTO ZBKLIBRARYASSET (ZASSETID, ZEPUBID, ZTITLE, ZAUTHOR)
		 VALUES ('ABC123', NULL, 'Dune', 'Frank Herbert')`,
	)
}

func TestSource_Fetch(t *testing.T) {
	annotationDir := t.TempDir()
	libraryDir := t.TempDir()
	createAnnotationDB(t, filepath.Join(annotationDir, "AEAnnotation.sqlite"))
	createLibraryDB(t, filepath.Join(libraryDir, "BKLibrary.sqlite"))

	source := NewSource(annotationDir, libraryDir)
	records, err := source.Fetch(context.Background())
	require.NoError(t, err)

	// The deleted row and the textless row are filtered by the query.
	require.Len(t, records, 3)

	byAsset := map[string]int{}
	for _, rec := range records {
		byAsset[rec.AssetID]++
	}
	assert.Equal(t, map[string]int{"ABC123": 2, "DEF456": 1}, byAsset)

	first := records[0]
	assert.Equal(t, "ABC123", first.AssetID)
	assert.Equal(t, "Dune", first.Title)
	assert.Equal(t, "Frank Herbert", first.Author)
	assert.Equal(t, "a highlight", first.SelectedText)
	require.NotNil(t, first.ModifiedDate)
	assert.InDelta(t, 700000000.5, *first.ModifiedDate, 0.001)

	// The other book has no library row; title and author stay empty.
	last := records[2]
	assert.Equal(t, "DEF456", last.AssetID)
	assert.Empty(t, last.Title)
	assert.Empty(t, last.Author)
}

func TestSource_Fetch_NoDatabase(t *testing.T) {
	source := NewSource(t.TempDir(), t.TempDir())
	_, err := source.Fetch(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoDatabase)
}

func TestFindDatabase_PicksNewestUsableFile(t *testing.T) {
	dir := t.TempDir()

	oldPath := filepath.Join(dir, "old.sqlite")
	newPath := filepath.Join(dir, "new.sqlite")
	createAnnotationDB(t, oldPath)
	createAnnotationDB(t, newPath)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	found, err := findDatabase([]string{dir}, annotationTable)
	require.NoError(t, err)
	assert.Equal(t, newPath, found)
}

func TestFindDatabase_SkipsFilesWithoutRequiredTable(t *testing.T) {
	dir := t.TempDir()

	decoy := filepath.Join(dir, "decoy.sqlite")
	createFixtureDB(t, decoy, `CREATE TABLE SOMETHING_ELSE (X TEXT)`)

	real := filepath.Join(dir, "real.sqlite")
	createAnnotationDB(t, real)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(real, past, past))

	found, err := findDatabase([]string{dir}, annotationTable)
	require.NoError(t, err)
	assert.Equal(t, real, found)
}
