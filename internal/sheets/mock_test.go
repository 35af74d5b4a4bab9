package sheets

import (
	"context"
	"strings"
)

// MockSheetsAPI implements SheetsAPI for testing
type MockSheetsAPI struct {
	sheets          map[string]bool            // Track which sheets exist
	data            map[string][][]interface{} // Store sheet data
	shouldError     bool
	failuresLeft    int // Fail this many calls before succeeding
	lastReadRange   string
	lastUpdateRange string
	lastUpdateData  [][]interface{}
	lastCapacity    [2]int
	createCalls     int
}

func NewMockSheetsAPI() *MockSheetsAPI {
	return &MockSheetsAPI{
		sheets: make(map[string]bool),
		data:   make(map[string][][]interface{}),
	}
}

func (m *MockSheetsAPI) fail(msg string) error {
	if m.shouldError {
		return &mockError{msg: msg}
	}
	if m.failuresLeft > 0 {
		m.failuresLeft--
		return &mockError{msg: msg}
	}
	return nil
}

// sheetNameFromRange extracts the sheet name before the '!' with quotes removed
func sheetNameFromRange(range_ string) string {
	sheetName := range_
	if exclamationIndex := strings.Index(range_, "!"); exclamationIndex != -1 {
		sheetName = range_[:exclamationIndex]
	}
	return strings.Trim(sheetName, "'\"")
}

func (m *MockSheetsAPI) ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error) {
	if err := m.fail("mock read error"); err != nil {
		return nil, err
	}
	m.lastReadRange = range_

	if data, exists := m.data[sheetNameFromRange(range_)]; exists {
		return data, nil
	}
	return [][]interface{}{}, nil
}

func (m *MockSheetsAPI) UpdateRange(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error {
	if err := m.fail("mock update error"); err != nil {
		return err
	}
	m.lastUpdateRange = range_
	m.lastUpdateData = values
	m.data[sheetNameFromRange(range_)] = values
	return nil
}

func (m *MockSheetsAPI) ClearRange(ctx context.Context, spreadsheetID, range_ string) error {
	if err := m.fail("mock clear error"); err != nil {
		return err
	}
	delete(m.data, sheetNameFromRange(range_))
	return nil
}

func (m *MockSheetsAPI) CreateSheet(ctx context.Context, spreadsheetID, sheetName string) error {
	if err := m.fail("mock create error"); err != nil {
		return err
	}
	m.createCalls++
	m.sheets[sheetName] = true
	return nil
}

func (m *MockSheetsAPI) SheetExists(ctx context.Context, spreadsheetID, sheetName string) (bool, error) {
	if err := m.fail("mock exists error"); err != nil {
		return false, err
	}
	return m.sheets[sheetName], nil
}

func (m *MockSheetsAPI) EnsureSheetCapacity(ctx context.Context, spreadsheetID, sheetName string, requiredRows, requiredCols int) error {
	if err := m.fail("mock capacity error"); err != nil {
		return err
	}
	m.lastCapacity = [2]int{requiredRows, requiredCols}
	return nil
}

func (m *MockSheetsAPI) SetError(shouldError bool) {
	m.shouldError = shouldError
}

func (m *MockSheetsAPI) GetSheetData(sheetName string) [][]interface{} {
	return m.data[sheetName]
}

func (m *MockSheetsAPI) SetSheetData(sheetName string, data [][]interface{}) {
	m.sheets[sheetName] = true
	m.data[sheetName] = data
}

type mockError struct {
	msg string
}

func (e *mockError) Error() string {
	return e.msg
}

var _ SheetsAPI = (*MockSheetsAPI)(nil)
