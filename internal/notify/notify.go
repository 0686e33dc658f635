// Package notify sends the e-mails the blog emits when comments are moderated.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"unicode"
)

// Mailer delivers notification e-mails.
type Mailer interface {
	SendCommentApproved(ctx context.Context, postTitle, to string) error
}

// Mail is a rendered message.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// CommentApproved renders the notification sent to a commenter whose comment was approved.
func CommentApproved(postTitle, to string) Mail {
	return Mail{
		To:      to,
		Subject: fmt.Sprintf("¡Tu comentario ha sido aprobado en: %s!", postTitle),
		Body:    fmt.Sprintf("Felicidades, tu comentario sobre %q ha sido publicado.", postTitle),
	}
}

// LogMailer writes mails to the structured log instead of delivering them.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) SendCommentApproved(ctx context.Context, postTitle, to string) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mail := CommentApproved(postTitle, to)
	logger.InfoContext(ctx, "email sent", "to", mail.To, "subject", mail.Subject, "body", mail.Body)
	return nil
}

// headerValue folds CR, LF and other control characters into spaces so a
// value can never start a new header line.
func headerValue(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

func message(from string, mail Mail) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", headerValue(from)))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", headerValue(mail.To)))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(mail.Subject))))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(mail.Body)
	buf.WriteString("\r\n")
	return buf.Bytes()
}

func maskForLog(s string) string {
	if s == "" {
		return "(none)"
	}
	if len(s) <= 2 {
		return "***"
	}
	return s[:1] + "***" + s[len(s)-1:]
}
