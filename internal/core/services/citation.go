package services

import "github.com/custodia-labs/folio/internal/core/domain"

// Cite formats a retrieved record as
// "{authors}({date_published}) {source}. Pgs. {page}".
// Missing fields render as empty strings.
func Cite(rec domain.ResultRecord) string {
	return rec.Authors + "(" + rec.DatePublished + ") " + rec.Source + ". Pgs. " + rec.Page
}
