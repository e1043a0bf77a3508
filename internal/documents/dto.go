package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID            int64     `json:"id"`
	FilePath      string    `json:"filePath"`
	FileFormat    *string   `json:"fileFormat"`
	ExtractedText *string   `json:"extractedText"`
	Status        string    `json:"status"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

func toResponse(doc Document) DocumentResponse {
	var format *string
	if doc.Format != nil {
		f := doc.Format.String()
		format = &f
	}
	return DocumentResponse{
		ID:            doc.ID,
		FilePath:      doc.FilePath,
		FileFormat:    format,
		ExtractedText: doc.ExtractedText,
		Status:        string(doc.Status),
		UploadedAt:    doc.UploadedAt,
	}
}
