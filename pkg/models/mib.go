package models

import "time"

// MIBFile is a MIB module stored in the local library.
type MIBFile struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Module      string    `json:"module,omitempty"`
	Hash        string    `json:"hash"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// MIBUploadResponse reports the files stored by one upload.
type MIBUploadResponse struct {
	Success bool      `json:"success"`
	Files   []MIBFile `json:"files"`
	Skipped []string  `json:"skipped,omitempty"`
}
