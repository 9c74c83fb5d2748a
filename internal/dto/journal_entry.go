package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/read424/walrex-contable-sub001/internal/core/domain"
)

// entryDateLayout is the wire format for entry dates (date only, no time component).
const entryDateLayout = "2006-01-02"

// DocumentUploadRequest carries one base64-encoded supporting document for a line.
type DocumentUploadRequest struct {
	Filename string `json:"filename" binding:"required,max=255"`
	MimeType string `json:"mimeType" binding:"required,max=100"`
	Content  string `json:"content" binding:"required"` // base64-encoded file body
}

// CreateJournalEntryLineRequest is one posting of a candidate entry.
// Debit and credit carry no binding constraints on purpose: amount rules are
// business validation and must surface as INVALID_ENTRY, not BAD_REQUEST.
type CreateJournalEntryLineRequest struct {
	AccountID   int64                   `json:"accountID" binding:"required"`
	Debit       decimal.Decimal         `json:"debit"`
	Credit      decimal.Decimal         `json:"credit"`
	Description string                  `json:"description" binding:"omitempty,max=500"`
	Documents   []DocumentUploadRequest `json:"documents" binding:"omitempty,dive"`
}

// CreateJournalEntryRequest is the POST /journal-entries body. Line-count and
// balance rules are intentionally left to the service so their failures carry
// the structured validation codes.
type CreateJournalEntryRequest struct {
	EntryDate   string                          `json:"entryDate" binding:"required,datetime=2006-01-02"`
	BookType    string                          `json:"bookType" binding:"required"`
	Description string                          `json:"description" binding:"required,min=3,max=1000"`
	Reference   *string                         `json:"reference" binding:"omitempty,max=100"`
	Lines       []CreateJournalEntryLineRequest `json:"lines" binding:"required"`
}

// Normalize trims free-text fields and uppercases the book type.
func (r *CreateJournalEntryRequest) Normalize() {
	r.BookType = strings.ToUpper(strings.TrimSpace(r.BookType))
	r.Description = strings.TrimSpace(r.Description)
	for i := range r.Lines {
		r.Lines[i].Description = strings.TrimSpace(r.Lines[i].Description)
	}
}

// ParsedEntryDate parses the wire-format entry date.
func (r *CreateJournalEntryRequest) ParsedEntryDate() (time.Time, error) {
	return time.Parse(entryDateLayout, r.EntryDate)
}

// ListJournalEntriesParams are the listing filters and page request.
type ListJournalEntriesParams struct {
	Year        *int    `form:"year" binding:"omitempty,min=1900,max=2999"`
	Month       *int    `form:"month" binding:"omitempty,min=1,max=12"`
	BookType    *string `form:"bookType"`
	Description *string `form:"description"`
	Page        int     `form:"page" binding:"omitempty,min=1"`
	Size        int     `form:"size" binding:"omitempty,min=1,max=100"`
}

// ApplyDefaults fills page defaults for zero-valued params.
func (p *ListJournalEntriesParams) ApplyDefaults() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = 20
	}
}

// JournalEntryDocumentResponse is the document metadata returned to clients.
type JournalEntryDocumentResponse struct {
	ID               int64     `json:"id"`
	OriginalFilename string    `json:"originalFilename"`
	MimeType         string    `json:"mimeType"`
	FileSizeBytes    int64     `json:"fileSizeBytes"`
	UploadedAt       time.Time `json:"uploadedAt"`
}

// JournalEntryLineResponse is one persisted posting.
type JournalEntryLineResponse struct {
	ID          int64                          `json:"id"`
	AccountID   int64                          `json:"accountID"`
	Debit       decimal.Decimal                `json:"debit"`
	Credit      decimal.Decimal                `json:"credit"`
	Description string                         `json:"description"`
	Documents   []JournalEntryDocumentResponse `json:"documents,omitempty"`
}

// JournalEntryResponse is the full persisted aggregate including totals and
// the two generated correlatives.
type JournalEntryResponse struct {
	ID              int64                      `json:"id"`
	EntryDate       string                     `json:"entryDate"`
	BookType        string                     `json:"bookType"`
	Description     string                     `json:"description"`
	Reference       *string                    `json:"reference,omitempty"`
	OperationNumber int                        `json:"operationNumber"`
	BookCorrelative int                        `json:"bookCorrelative"`
	Status          string                     `json:"status"`
	TotalDebit      decimal.Decimal            `json:"totalDebit"`
	TotalCredit     decimal.Decimal            `json:"totalCredit"`
	Lines           []JournalEntryLineResponse `json:"lines"`
	CreatedAt       time.Time                  `json:"createdAt"`
	UpdatedAt       time.Time                  `json:"updatedAt"`
}

// PagedJournalEntriesResponse is a page of the read projection.
type PagedJournalEntriesResponse struct {
	Items         []JournalEntryResponse `json:"items"`
	Page          int                    `json:"page"`
	Size          int                    `json:"size"`
	TotalElements int64                  `json:"totalElements"`
	TotalPages    int                    `json:"totalPages"`
}

// ToJournalEntryResponse converts a domain aggregate to its response DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalEntryLineResponse, len(e.Lines))
	for i := range e.Lines {
		lines[i] = toLineResponse(&e.Lines[i])
	}
	return JournalEntryResponse{
		ID:              e.ID,
		EntryDate:       e.EntryDate.Format(entryDateLayout),
		BookType:        string(e.BookType),
		Description:     e.Description,
		Reference:       e.Reference,
		OperationNumber: e.OperationNumber,
		BookCorrelative: e.BookCorrelative,
		Status:          string(e.Status),
		TotalDebit:      e.TotalDebit(),
		TotalCredit:     e.TotalCredit(),
		Lines:           lines,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func toLineResponse(l *domain.JournalEntryLine) JournalEntryLineResponse {
	var docs []JournalEntryDocumentResponse
	if len(l.Documents) > 0 {
		docs = make([]JournalEntryDocumentResponse, len(l.Documents))
		for i, d := range l.Documents {
			docs[i] = JournalEntryDocumentResponse{
				ID:               d.ID,
				OriginalFilename: d.OriginalFilename,
				MimeType:         d.MimeType,
				FileSizeBytes:    d.FileSizeBytes,
				UploadedAt:       d.UploadedAt,
			}
		}
	}
	return JournalEntryLineResponse{
		ID:          l.ID,
		AccountID:   l.AccountID,
		Debit:       l.Debit,
		Credit:      l.Credit,
		Description: l.Description,
		Documents:   docs,
	}
}

// ToJournalEntryResponses converts a slice of aggregates.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	responses := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToJournalEntryResponse(&entries[i])
	}
	return responses
}
