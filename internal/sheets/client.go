package sheets

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client is the SheetsAPI backed by the Google Sheets service. Raw cell
// values stop here; callers read them through Cell.
type Client struct {
	service *sheets.Service
}

// NewClient authenticates with a service account credentials file
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	service, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{service: service}, nil
}

func (c *Client) ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, range_).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", range_, err)
	}
	return resp.Values, nil
}

// UpdateRange writes values RAW so card names and rates are stored as given
func (c *Client) UpdateRange(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error {
	call := c.service.Spreadsheets.Values.Update(spreadsheetID, range_, &sheets.ValueRange{Values: values})
	if _, err := call.ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to write %s: %w", range_, err)
	}
	return nil
}

func (c *Client) ClearRange(ctx context.Context, spreadsheetID, range_ string) error {
	call := c.service.Spreadsheets.Values.Clear(spreadsheetID, range_, &sheets.ClearValuesRequest{})
	if _, err := call.Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", range_, err)
	}
	return nil
}

func (c *Client) CreateSheet(ctx context.Context, spreadsheetID, sheetName string) error {
	err := c.batchUpdate(ctx, spreadsheetID, &sheets.Request{
		AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{Title: sheetName},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add tab %q: %w", sheetName, err)
	}
	return nil
}

func (c *Client) SheetExists(ctx context.Context, spreadsheetID, sheetName string) (bool, error) {
	props, err := c.findSheet(ctx, spreadsheetID, sheetName)
	if err != nil {
		return false, err
	}
	return props != nil, nil
}

// EnsureSheetCapacity grows the tab's grid to fit requiredRows x requiredCols
func (c *Client) EnsureSheetCapacity(ctx context.Context, spreadsheetID, sheetName string, requiredRows, requiredCols int) error {
	props, err := c.findSheet(ctx, spreadsheetID, sheetName)
	if err != nil {
		return err
	}
	if props == nil {
		return fmt.Errorf("tab %q does not exist", sheetName)
	}

	grid := props.GridProperties
	if grid == nil {
		grid = &sheets.GridProperties{}
	}
	rows, cols, resize := expandedCapacity(int(grid.RowCount), int(grid.ColumnCount), requiredRows, requiredCols)
	if !resize {
		return nil
	}

	log.Debug().
		Str("sheet_name", sheetName).
		Str("grid", fmt.Sprintf("%dx%d -> %dx%d", grid.RowCount, grid.ColumnCount, rows, cols)).
		Msg("Resizing tab")

	err = c.batchUpdate(ctx, spreadsheetID, &sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId: props.SheetId,
				GridProperties: &sheets.GridProperties{
					RowCount:    int64(rows),
					ColumnCount: int64(cols),
				},
			},
			Fields: "gridProperties.rowCount,gridProperties.columnCount",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to resize tab %q: %w", sheetName, err)
	}
	return nil
}

// findSheet returns the properties of the named tab, or nil if there is none
func (c *Client) findSheet(ctx context.Context, spreadsheetID, sheetName string) (*sheets.SheetProperties, error) {
	spreadsheet, err := c.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spreadsheet %s: %w", spreadsheetID, err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == sheetName {
			return sheet.Properties, nil
		}
	}
	return nil, nil
}

func (c *Client) batchUpdate(ctx context.Context, spreadsheetID string, req *sheets.Request) error {
	batch := &sheets.BatchUpdateSpreadsheetRequest{Requests: []*sheets.Request{req}}
	_, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, batch).Context(ctx).Do()
	return err
}

// expandedCapacity pads any growth with 100 rows or 10 columns of headroom
// so repeated exports of a slowly growing table rarely resize.
func expandedCapacity(currentRows, currentCols, requiredRows, requiredCols int) (rows, cols int, resize bool) {
	rows, cols = currentRows, currentCols
	if requiredRows > currentRows {
		rows, resize = requiredRows+100, true
	}
	if requiredCols > currentCols {
		cols, resize = requiredCols+10, true
	}
	return rows, cols, resize
}
