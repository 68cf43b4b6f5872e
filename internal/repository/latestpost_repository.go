package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/craftsites/autopost/internal/apperr"
	"google.golang.org/api/sheets/v4"
)

// SheetRow is one data row of the latest-posts table, name-keyed by the
// header so the schema survives column reordering or additions.
type SheetRow struct {
	Number int // 1-based sheet row number
	Values map[string]string
}

type SheetTable struct {
	Header []string
	Rows   []*SheetRow
}

// LatestPostRepository is the read/update/append surface over the
// latest-posts table. There is exactly one row per tenant; the persister
// enforces that by overwriting in place.
type LatestPostRepository interface {
	ReadTable(ctx context.Context) (*SheetTable, error)
	UpdateRow(ctx context.Context, rowNumber int, header []string, values map[string]string) error
	AppendRow(ctx context.Context, header []string, values map[string]string) error
}

type latestPostRepository struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewLatestPostRepository(svc *sheets.Service, spreadsheetID, sheetName string) LatestPostRepository {
	return &latestPostRepository{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}
}

func (r *latestPostRepository) ReadTable(ctx context.Context) (*SheetTable, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, r.sheetName).Context(ctx).Do()
	if err != nil {
		slog.Error(err.Error())
		return nil, &apperr.DataSourceError{Source: "latest posts", Err: err}
	}
	if len(resp.Values) == 0 {
		return nil, &apperr.DataSourceError{Source: "latest posts", Err: fmt.Errorf("sheet %s has no header row", r.sheetName)}
	}

	header := make([]string, len(resp.Values[0]))
	for i, cell := range resp.Values[0] {
		header[i] = strings.ToLower(strings.TrimSpace(fmt.Sprint(cell)))
	}

	table := &SheetTable{Header: header}
	for i, cells := range resp.Values[1:] {
		row := &SheetRow{
			Number: i + 2, // header occupies row 1
			Values: make(map[string]string, len(header)),
		}
		for j, name := range header {
			if j < len(cells) {
				row.Values[name] = fmt.Sprint(cells[j])
			} else {
				row.Values[name] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func (r *latestPostRepository) UpdateRow(ctx context.Context, rowNumber int, header []string, values map[string]string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{rowCells(header, values)}}
	writeRange := fmt.Sprintf("%s!A%d", r.sheetName, rowNumber)

	_, err := r.svc.Spreadsheets.Values.Update(r.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		slog.Error(err.Error())
		return &apperr.DataSourceError{Source: "latest posts", Err: err}
	}
	return nil
}

func (r *latestPostRepository) AppendRow(ctx context.Context, header []string, values map[string]string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{rowCells(header, values)}}

	_, err := r.svc.Spreadsheets.Values.Append(r.spreadsheetID, r.sheetName, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		slog.Error(err.Error())
		return &apperr.DataSourceError{Source: "latest posts", Err: err}
	}
	return nil
}

// rowCells serializes a name-keyed row back into header order. Columns the
// record does not carry are written as empty strings, never errors, so the
// pipeline tolerates operator-added columns.
func rowCells(header []string, values map[string]string) []interface{} {
	cells := make([]interface{}, len(header))
	for i, name := range header {
		cells[i] = values[name]
	}
	return cells
}
