package models

import "gorm.io/gorm"

// Document types required for KYC
const (
	DocumentAadhaar   = "aadhaar"
	DocumentPAN       = "pan"
	DocumentSelfie    = "selfie"
	DocumentSignature = "signature"
)

// RequiredKYCDocuments lists every document type a KYC submission needs.
var RequiredKYCDocuments = []string{DocumentAadhaar, DocumentPAN, DocumentSelfie, DocumentSignature}

// IsValidDocumentType reports whether t is a known document type.
func IsValidDocumentType(t string) bool {
	for _, d := range RequiredKYCDocuments {
		if d == t {
			return true
		}
	}
	return false
}

type Document struct {
	gorm.Model
	UserID      uint   `gorm:"not null;uniqueIndex:idx_user_doc_type" json:"user_id"`
	Type        string `gorm:"not null;uniqueIndex:idx_user_doc_type" json:"type"`
	FileName    string `gorm:"not null" json:"file_name"`
	StoragePath string `gorm:"not null" json:"-"`
	MimeType    string `json:"mime_type"`
	Size        int64  `json:"size"`
	Version     int    `gorm:"default:1" json:"version"`
}
