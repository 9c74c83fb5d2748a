package domain

import (
	"strings"
	"time"
)

// JournalEntryDocument is a supporting document attached to a journal entry
// line. Files live on the filesystem; only metadata is persisted.
type JournalEntryDocument struct {
	ID                 int64     `json:"id"`
	JournalEntryLineID int64     `json:"journalEntryLineID"`
	OriginalFilename   string    `json:"originalFilename"`
	StoredFilename     string    `json:"storedFilename"`
	FilePath           string    `json:"filePath"`
	MimeType           string    `json:"mimeType"`
	FileSizeBytes      int64     `json:"fileSizeBytes"`
	UploadedAt         time.Time `json:"uploadedAt"`
}

// IsPDF reports whether the document is a PDF.
func (d *JournalEntryDocument) IsPDF() bool {
	return strings.EqualFold(d.MimeType, "application/pdf")
}

// IsImage reports whether the document is an image.
func (d *JournalEntryDocument) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(d.MimeType), "image/")
}

// FileExtension returns the extension of the original filename, without the
// dot, or an empty string when there is none.
func (d *JournalEntryDocument) FileExtension() string {
	idx := strings.LastIndex(d.OriginalFilename, ".")
	if idx < 0 || idx == len(d.OriginalFilename)-1 {
		return ""
	}
	return d.OriginalFilename[idx+1:]
}
