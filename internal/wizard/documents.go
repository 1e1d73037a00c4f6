package wizard

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// Document slot keys.
const (
	DocIdentity          FieldKey = "documentoIdentita"
	DocResidencePermit   FieldKey = "permessoSoggiorno"
	DocPayslip1          FieldKey = "bustaPaga1"
	DocPayslip2          FieldKey = "bustaPaga2"
	DocPayslip3          FieldKey = "bustaPaga3"
	DocSalaryCertificate FieldKey = "certificatoSalario"
	DocDebtExtract       FieldKey = "estrattoEsecuzioni"
	DocRentalContract    FieldKey = "contrattoAffitto"
	DocInsurancePolicy   FieldKey = "polizzaAssicurazione"
	DocCreditContract    FieldKey = "contrattoCredito"
)

// Upload rejections.
var (
	ErrFileTooLarge = errors.New("document exceeds the size limit")
	ErrFileNotPDF   = errors.New("document is not a PDF")
)

const pdfContentType = "application/pdf"

// DocumentRequirement describes one upload slot.
type DocumentRequirement struct {
	Key      FieldKey `json:"fieldKey"`
	Label    string   `json:"label"`
	Optional bool     `json:"optional"`
}

var documentCatalog = []DocumentRequirement{
	{Key: DocIdentity, Label: "Documento d'identità (fronte e retro)"},
	{Key: DocResidencePermit, Label: "Permesso di soggiorno"},
	{Key: DocPayslip1, Label: "Busta paga (ultimo mese)"},
	{Key: DocPayslip2, Label: "Busta paga (penultimo mese)"},
	{Key: DocPayslip3, Label: "Busta paga (terzultimo mese)"},
	{Key: DocSalaryCertificate, Label: "Certificato di salario"},
	{Key: DocDebtExtract, Label: "Estratto del registro esecuzioni"},
	{Key: DocRentalContract, Label: "Contratto d'affitto"},
	{Key: DocInsurancePolicy, Label: "Polizza assicurazione malattia"},
	{Key: DocCreditContract, Label: "Contratto di credito in corso", Optional: true},
}

// DocumentCatalog returns the upload slots in display order.
func DocumentCatalog() []DocumentRequirement {
	return append([]DocumentRequirement(nil), documentCatalog...)
}

// ParseDocumentKey accepts the key of a known upload slot.
func ParseDocumentKey(name string) (FieldKey, error) {
	key := FieldKey(strings.TrimSpace(name))
	if _, ok := documentRequirement(key); !ok {
		return "", ErrUnknownDocument
	}
	return key, nil
}

func documentRequirement(key FieldKey) (DocumentRequirement, bool) {
	for _, req := range documentCatalog {
		if req.Key == key {
			return req, true
		}
	}
	return DocumentRequirement{}, false
}

// Document is an uploaded file held in memory.
type Document struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}

// ValidateFile checks the size limit and that the file is a PDF, judged by
// its declared content type, or by extension when none was declared. A nil
// document is an empty upload and counts as not a PDF.
func ValidateFile(doc *Document, maxSize int64) error {
	if doc == nil {
		return ErrFileNotPDF
	}
	if maxSize > 0 && doc.Size > maxSize {
		return ErrFileTooLarge
	}
	if !isPDF(doc) {
		return ErrFileNotPDF
	}
	return nil
}

func isPDF(doc *Document) bool {
	contentType := strings.ToLower(strings.TrimSpace(doc.ContentType))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	switch contentType {
	case pdfContentType:
		return true
	case "", "application/octet-stream":
		if strings.EqualFold(filepath.Ext(doc.FileName), ".pdf") {
			return true
		}
		return len(doc.Data) > 0 && http.DetectContentType(doc.Data) == pdfContentType
	}
	return false
}
