package domain

import (
	"time"
)

// Status of a submission record. Transitions only pending -> approved.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Unspecified is the sentinel value for fields missing from a stored record.
const Unspecified = "Não especificado"

// Record is the canonical representation of one art submission. The durable
// owner of this data is the submissions repository (one issue per record);
// Record values are transient, reconstructed on demand from the issue body.
type Record struct {
	ID                 int       `json:"id"`
	Title              string    `json:"titulo"`
	ArtistName         string    `json:"artista"`
	Year               string    `json:"ano"`
	Style              string    `json:"estilo"`
	Technique          string    `json:"tecnica"`
	Dimensions         string    `json:"dimensoes"`
	Materials          string    `json:"materiais"`
	LocationOfCreation string    `json:"local"`
	Description        string    `json:"descricao"`
	WalletAddress      string    `json:"carteira"`
	ImageURL           string    `json:"imagem"`
	Status             Status    `json:"status"`
	URL                string    `json:"url,omitempty"`
	CreatedAt          time.Time `json:"criadoEm,omitempty"`
}

// Summary is the display-ready projection returned by the listing endpoint.
type Summary struct {
	ID         int    `json:"id"`
	Title      string `json:"titulo"`
	ArtistName string `json:"nomeArtista"`
	ImageURL   string `json:"imagem"`
	URL        string `json:"url"`
}

// Summary projects the record for listing.
func (r *Record) Summary() Summary {
	return Summary{
		ID:         r.ID,
		Title:      r.Title,
		ArtistName: r.ArtistName,
		ImageURL:   r.ImageURL,
		URL:        r.URL,
	}
}

// Displayable reports whether the record carries enough identity to be listed.
// Records missing title, artist or image never reach callers.
func (r *Record) Displayable() bool {
	return r.Title != "" && r.Title != Unspecified &&
		r.ArtistName != "" && r.ArtistName != Unspecified &&
		r.ImageURL != ""
}
