package model

import "time"

// BackupRecord is a single logbook entry for a database backup run.
// Month is derived from Date on the server and is never client input.
type BackupRecord struct {
	ID           string    `json:"id"`
	Date         string    `json:"date"`
	Month        string    `json:"month"`
	Time         string    `json:"time"`
	BackupNumber string    `json:"backupNumber"`
	Performer    string    `json:"performer"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RecordInput carries the four client-writable fields of a BackupRecord.
type RecordInput struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	BackupNumber string `json:"backupNumber"`
	Performer    string `json:"performer"`
}
