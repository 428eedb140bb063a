package model

import "time"

// ConsentAction is the operation a survey consent requirement guards.
type ConsentAction string

const (
	ConsentActionCreate ConsentAction = "create"
	ConsentActionRead   ConsentAction = "read"
)

// ConsentDocument is the current document of a consent type required
// by a survey. An outstanding document is one the user has not signed.
type ConsentDocument struct {
	ID        int       `json:"id"`
	TypeID    int       `json:"typeId"`
	TypeName  string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ConsentSignature records that a user signed a consent document.
type ConsentSignature struct {
	ID                int       `json:"id"`
	UserID            int       `json:"user_id"`
	ConsentDocumentID int       `json:"consent_document_id"`
	Language          string    `json:"language"`
	CreatedAt         time.Time `json:"created_at"`
}
