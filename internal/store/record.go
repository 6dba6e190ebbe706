package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/wicaksana/logbook/internal/model"
)

// RecordStore persists BackupRecord documents. It is the only owner of
// persisted records; everything the client side holds is a cache.
type RecordStore struct {
	db *sql.DB
}

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

const recordCols = `id, date, month, time, backup_number, performer, created_at, updated_at`

func scanRecord(scanner interface{ Scan(...any) error }) (*model.BackupRecord, error) {
	var r model.BackupRecord
	err := scanner.Scan(
		&r.ID, &r.Date, &r.Month, &r.Time, &r.BackupNumber,
		&r.Performer, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a new record with a store-assigned identifier. The month
// value comes from the handler, which derives it from the date.
func (s *RecordStore) Create(in model.RecordInput, month string) (*model.BackupRecord, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO backup_records (id, date, month, time, backup_number, performer) VALUES (?, ?, ?, ?, ?, ?)`,
		id, in.Date, month, in.Time, in.BackupNumber, in.Performer,
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	return s.GetByID(id)
}

func (s *RecordStore) GetByID(id string) (*model.BackupRecord, error) {
	row := s.db.QueryRow(`SELECT `+recordCols+` FROM backup_records WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return r, nil
}

// List returns all records ordered by date descending. Dates are ISO-8601
// strings, so lexical order is chronological order.
func (s *RecordStore) List() ([]model.BackupRecord, error) {
	rows, err := s.db.Query(
		`SELECT ` + recordCols + ` FROM backup_records ORDER BY date DESC, created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []model.BackupRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// Update replaces the four mutable fields and the derived month on the
// matching record. The identifier never changes.
func (s *RecordStore) Update(id string, in model.RecordInput, month string) (*model.BackupRecord, error) {
	_, err := s.db.Exec(
		`UPDATE backup_records
		 SET date = ?, month = ?, time = ?, backup_number = ?, performer = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		in.Date, month, in.Time, in.BackupNumber, in.Performer, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the matching record and reports whether a row existed.
func (s *RecordStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM backup_records WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
