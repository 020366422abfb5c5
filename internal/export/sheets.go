// Package export writes budget spend reports to a Google spreadsheet so
// families can share a readable overview outside the app.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"famledger/internal/core"
)

type Options struct {
	SpreadsheetID string
	SheetName     string
	// CredentialsFile and CredentialsJSON are service account credentials;
	// JSON wins when both are set.
	CredentialsFile string
	CredentialsJSON string
}

type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetsExporter(ctx context.Context, opts Options) (*SheetsExporter, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if opts.SheetName == "" {
		return nil, errors.New("missing sheet name")
	}

	var credentialsJSON []byte
	switch {
	case opts.CredentialsJSON != "":
		credentialsJSON = []byte(opts.CredentialsJSON)
	case opts.CredentialsFile != "":
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
	}, nil
}

// ExportSpendReport appends one row per category plus an overall row for the
// snapshot and returns the number of rows written.
func (e *SheetsExporter) ExportSpendReport(ctx context.Context, budget core.Budget, snapshot core.BudgetSpendSnapshot) (int, error) {
	if e.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}

	exportedAt := time.Now().UTC().Format(time.RFC3339)
	periodStart := snapshot.Period.Start.Format("2006-01-02")
	periodEnd := snapshot.Period.End.Format("2006-01-02")

	rows := [][]any{{
		exportedAt,
		budget.Name,
		periodStart,
		periodEnd,
		"OVERALL",
		minorToDecimal(snapshot.Overall.LimitMinor),
		minorToDecimal(snapshot.Overall.SpentMinor),
	}}
	for _, cs := range snapshot.ByCategory {
		rows = append(rows, []any{
			exportedAt,
			budget.Name,
			periodStart,
			periodEnd,
			cs.CategoryID,
			minorToDecimal(cs.LimitMinor),
			minorToDecimal(cs.SpentMinor),
		})
	}

	rng := fmt.Sprintf("%s!A:G", e.sheetName)
	vr := &gsheet.ValueRange{Values: rows}

	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append to sheet %s: %w", e.sheetName, err)
	}

	slog.InfoContext(ctx, "Exported budget spend report",
		"budget_id", budget.ID,
		"sheet", e.sheetName,
		"rows", len(rows))

	return len(rows), nil
}

func minorToDecimal(minor int64) float64 {
	return float64(minor) / 100.0
}
