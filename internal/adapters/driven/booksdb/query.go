package booksdb

import (
	"fmt"
	"strings"
)

// Known column aliases per logical field, ordered by preference. Older and
// newer application versions expose the same data under different names.
var annotationAliases = map[string][]string{
	"asset_id":       {"ZANNOTATIONASSETID", "ZASSETID"},
	"location":       {"ZANNOTATIONLOCATION", "ZLOCATION", "ZANNOTATIONLOCATIONSTRING"},
	"selected_text":  {"ZANNOTATIONSELECTEDTEXT", "ZSELECTEDTEXT"},
	"note":           {"ZANNOTATIONNOTE", "ZNOTE"},
	"represent_text": {"ZANNOTATIONREPRESENTATIVETEXT", "ZREPRESENTATIVETEXT"},
	"chapter":        {"ZFUTUREPROOFING5", "ZCHAPTER", "ZANNOTATIONCHAPTER"},
	"style":          {"ZANNOTATIONSTYLE", "ZSTYLE"},
	"modified_date":  {"ZANNOTATIONMODIFICATIONDATE", "ZMODIFICATIONDATE"},
	"deleted":        {"ZANNOTATIONDELETED", "ZDELETED"},
	"location_sort":  {"ZPLLOCATIONRANGESTART", "ZLOCATIONRANGESTART"},
}

var libraryAliases = map[string][]string{
	"title":  {"ZTITLE"},
	"author": {"ZAUTHOR"},
}

// Candidate join columns on the library side; the asset ID may land in any
// of them depending on how the book was acquired.
var libraryJoinColumns = []string{
	"ZASSETID",
	"ZEPUBID",
	"ZMAPPEDASSETID",
	"ZTEMPORARYASSETID",
	"ZASSETGUID",
}

// pickColumn returns the first candidate present in the available columns.
func pickColumn(available []string, candidates []string) string {
	for _, col := range candidates {
		for _, have := range available {
			if col == have {
				return col
			}
		}
	}
	return ""
}

// buildNoteQuery assembles the annotation SELECT against whatever columns
// the two databases actually expose. The asset ID column and at least one of
// the text columns are required; everything else degrades to NULL.
func buildNoteQuery(annotationCols, libraryCols []string) (string, error) {
	assetIDCol := pickColumn(annotationCols, annotationAliases["asset_id"])
	if assetIDCol == "" {
		return "", fmt.Errorf("annotation database has no recognised asset id column")
	}

	selectedCol := pickColumn(annotationCols, annotationAliases["selected_text"])
	noteCol := pickColumn(annotationCols, annotationAliases["note"])
	if selectedCol == "" && noteCol == "" {
		return "", fmt.Errorf("annotation database has neither selected text nor note columns")
	}

	locationCol := pickColumn(annotationCols, annotationAliases["location"])
	representCol := pickColumn(annotationCols, annotationAliases["represent_text"])
	chapterCol := pickColumn(annotationCols, annotationAliases["chapter"])
	styleCol := pickColumn(annotationCols, annotationAliases["style"])
	modifiedCol := pickColumn(annotationCols, annotationAliases["modified_date"])
	deletedCol := pickColumn(annotationCols, annotationAliases["deleted"])
	locationSortCol := pickColumn(annotationCols, annotationAliases["location_sort"])

	titleCol := pickColumn(libraryCols, libraryAliases["title"])
	authorCol := pickColumn(libraryCols, libraryAliases["author"])

	var joinConditions []string
	for _, col := range libraryJoinColumns {
		if pickColumn(libraryCols, []string{col}) != "" {
			joinConditions = append(joinConditions,
				fmt.Sprintf("%s.%s = books.%s.%s", annotationTable, assetIDCol, libraryTable, col))
		}
	}
	joinClause := ""
	if len(joinConditions) > 0 {
		joinClause = fmt.Sprintf("LEFT JOIN books.%s ON %s",
			libraryTable, strings.Join(joinConditions, " OR "))
	}

	titleExpr, authorExpr := "NULL", "NULL"
	if joinClause != "" {
		if titleCol != "" {
			titleExpr = fmt.Sprintf("books.%s.%s", libraryTable, titleCol)
		}
		if authorCol != "" {
			authorExpr = fmt.Sprintf("books.%s.%s", libraryTable, authorCol)
		}
	}

	selectOrNull := func(col string) string {
		if col == "" {
			return "NULL"
		}
		return annotationTable + "." + col
	}

	selectColumns := []string{
		fmt.Sprintf("%s.%s AS asset_id", annotationTable, assetIDCol),
		titleExpr + " AS title",
		authorExpr + " AS author",
		selectOrNull(locationCol) + " AS location",
		selectOrNull(selectedCol) + " AS selected_text",
		selectOrNull(noteCol) + " AS note",
		selectOrNull(representCol) + " AS represent_text",
		selectOrNull(chapterCol) + " AS chapter",
		selectOrNull(styleCol) + " AS style",
		selectOrNull(modifiedCol) + " AS modified_date",
	}

	whereClauses := []string{
		fmt.Sprintf("%s.%s IS NOT NULL", annotationTable, assetIDCol),
		fmt.Sprintf("%s.%s != ''", annotationTable, assetIDCol),
	}
	if deletedCol != "" {
		whereClauses = append([]string{
			fmt.Sprintf("%s.%s = 0", annotationTable, deletedCol),
		}, whereClauses...)
	}

	var textFilters []string
	if selectedCol != "" {
		textFilters = append(textFilters, fmt.Sprintf(
			"(%s.%s IS NOT NULL AND %s.%s != '')",
			annotationTable, selectedCol, annotationTable, selectedCol))
	}
	if noteCol != "" {
		textFilters = append(textFilters, fmt.Sprintf(
			"(%s.%s IS NOT NULL AND %s.%s != '')",
			annotationTable, noteCol, annotationTable, noteCol))
	}
	if len(textFilters) > 0 {
		whereClauses = append(whereClauses, "("+strings.Join(textFilters, " OR ")+")")
	}

	orderCol := locationSortCol
	for _, candidate := range []string{locationCol, modifiedCol, assetIDCol} {
		if orderCol != "" {
			break
		}
		orderCol = candidate
	}
	orderBy := fmt.Sprintf("ORDER BY %s.%s, %s.%s", annotationTable, assetIDCol, annotationTable, orderCol)

	query := strings.Join([]string{
		"SELECT",
		strings.Join(selectColumns, ", "),
		"FROM " + annotationTable,
		joinClause,
		"WHERE " + strings.Join(whereClauses, " AND "),
		orderBy,
	}, "\n")

	return query, nil
}
