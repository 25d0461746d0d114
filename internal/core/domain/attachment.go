package domain

import "time"

// MaxAttachmentSize bounds a single receipt upload.
const MaxAttachmentSize = 10 << 20

// AllowedAttachmentTypes are the sniffed content types accepted for receipts.
var AllowedAttachmentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/heic":      true,
	"image/webp":      true,
}

// Attachment is the metadata of a receipt stored in blob storage.
type Attachment struct {
	ID          string    `json:"id"`
	ExpenseID   string    `json:"expenseId"`
	ObjectKey   string    `json:"-"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}
