package csvstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/equity/internal/model"
)

// TransactionHeader is the CSV header for transactions.csv.
var TransactionHeader = []string{
	"id", "type", "date", "amount", "description", "account_id", "from_account_id", "to_account_id",
	"project_id", "category_id", "contact_id", "batch_id", "purpose", "leg_role",
}

// ProjectHeader is the CSV header for projects.csv.
var ProjectHeader = []string{"project_id", "project_name"}

const (
	numFields   = 14
	dateFormat  = "2006-01-02"
	colID       = 0
	colType     = 1
	colDate     = 2
	colAmount   = 3
	colDesc     = 4
	colAcct     = 5
	colFrom     = 6
	colTo       = 7
	colProject  = 8
	colCategory = 9
	colContact  = 10
	colBatch    = 11
	colPurpose  = 12
	colLegRole  = 13
)

// ReadTransactions reads all rows from a transactions.csv reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txs []model.Transaction
	for i, rec := range records[1:] {
		tx, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// WriteTransactions writes transactions to a writer (including header).
func WriteTransactions(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(TransactionHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, tx := range txs {
		if err := cw.Write(MarshalTransaction(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(tx model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = tx.ID
	row[colType] = string(tx.Type)
	row[colDate] = tx.Date.Format(dateFormat)
	row[colAmount] = tx.Amount.String()
	row[colDesc] = tx.Description
	row[colAcct] = tx.AccountID
	row[colFrom] = tx.FromAccountID
	row[colTo] = tx.ToAccountID
	row[colProject] = tx.ProjectID
	row[colCategory] = tx.CategoryID
	row[colContact] = tx.ContactID
	row[colBatch] = tx.BatchID
	row[colPurpose] = string(tx.Purpose)
	row[colLegRole] = string(tx.LegRole)
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return model.Transaction{
		ID:            record[colID],
		Type:          model.TxType(record[colType]),
		Amount:        amount,
		Date:          date,
		Description:   record[colDesc],
		AccountID:     record[colAcct],
		FromAccountID: record[colFrom],
		ToAccountID:   record[colTo],
		ProjectID:     record[colProject],
		CategoryID:    record[colCategory],
		ContactID:     record[colContact],
		BatchID:       record[colBatch],
		Purpose:       model.Purpose(record[colPurpose]),
		LegRole:       model.LegRole(record[colLegRole]),
	}, nil
}

// ReadProjects reads projects.csv.
func ReadProjects(r io.Reader) ([]model.Project, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(ProjectHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading projects CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var projects []model.Project
	for _, rec := range records[1:] {
		projects = append(projects, model.Project{ID: rec[0], Name: rec[1]})
	}
	return projects, nil
}

// WriteProjects writes projects.csv.
func WriteProjects(w io.Writer, projects []model.Project) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProjectHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, p := range projects {
		if err := cw.Write([]string{p.ID, p.Name}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
