package models

import "time"

// Comment moderation states. New comments start pending.
const (
	CommentPending  = "pendiente"
	CommentApproved = "aprobado"
	CommentRejected = "rechazado"
)

var CommentStates = []string{CommentPending, CommentApproved, CommentRejected}

type Comment struct {
	ID            string    `json:"id"`
	PostID        string    `json:"postId"`
	Autor         string    `json:"autor"`
	Email         string    `json:"email,omitempty"`
	Contenido     string    `json:"contenido"`
	Estado        string    `json:"estado"`
	FechaCreacion time.Time `json:"fechaCreacion"`
}
