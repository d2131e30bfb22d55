// Package markup encodes a submission record into the body of a GitHub issue
// and reconstructs it back. The encoding is a fixed set of line-leading
// markers; only a marker at the start of a line delimits a field, so free text
// containing "**" or ":" never breaks extraction.
package markup

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/Nandart/nandart-api/internal/domain"
)

// Markers of the issue-body format. Changing any of these breaks decoding of
// previously stored submissions, so treat the set as versioned.
const (
	markerTitle       = "**🎨 Título:**"
	markerArtist      = "**🧑‍🎨 Artista:**"
	markerYear        = "**📅 Ano:**"
	markerStyle       = "**🖌️ Estilo:**"
	markerTechnique   = "**🧵 Técnica:**"
	markerDimensions  = "**📐 Dimensões:**"
	markerMaterials   = "**🧱 Materiais:**"
	markerLocation    = "**🌍 Local de criação:**"
	markerWallet      = "**👛 Carteira:**"
	markerDescription = "**📝 Descrição:**"
)

var imagePattern = regexp.MustCompile(`!\[Obra\]\((\S+?)\)`)

// singleLineMarkers maps each one-line marker to the record field it fills,
// in serialization order. Description is handled separately because its value
// spans lines.
var singleLineMarkers = []struct {
	marker string
	field  func(*domain.Record) *string
}{
	{markerTitle, func(r *domain.Record) *string { return &r.Title }},
	{markerArtist, func(r *domain.Record) *string { return &r.ArtistName }},
	{markerYear, func(r *domain.Record) *string { return &r.Year }},
	{markerStyle, func(r *domain.Record) *string { return &r.Style }},
	{markerTechnique, func(r *domain.Record) *string { return &r.Technique }},
	{markerDimensions, func(r *domain.Record) *string { return &r.Dimensions }},
	{markerMaterials, func(r *domain.Record) *string { return &r.Materials }},
	{markerLocation, func(r *domain.Record) *string { return &r.LocationOfCreation }},
	{markerWallet, func(r *domain.Record) *string { return &r.WalletAddress }},
}

// Serialize renders the record as an issue body. Only populated fields are
// written; the description block comes last so its free text cannot shadow
// the single-line fields.
func Serialize(r *domain.Record) string {
	var b strings.Builder

	for _, m := range singleLineMarkers {
		value := *m.field(r)
		if value == "" || value == domain.Unspecified {
			continue
		}
		if m.marker == markerWallet {
			value = "`" + value + "`"
		}
		fmt.Fprintf(&b, "%s %s\n", m.marker, value)
	}

	if r.Description != "" && r.Description != domain.Unspecified {
		b.WriteString(markerDescription + "\n")
		b.WriteString(strings.TrimRight(r.Description, "\n"))
		b.WriteString("\n")
	}

	if r.ImageURL != "" {
		fmt.Fprintf(&b, "\n![Obra](%s)\n", r.ImageURL)
	}

	return b.String()
}

// Deserialize reconstructs a record from an issue body. Missing fields decode
// to the Unspecified sentinel rather than aborting extraction of the others.
// It returns ErrMalformedRecord when neither title nor artist can be located.
func Deserialize(body string) (*domain.Record, error) {
	r := &domain.Record{Status: domain.StatusPending}
	for _, m := range singleLineMarkers {
		*m.field(r) = domain.Unspecified
	}
	r.Description = domain.Unspecified

	lines := strings.Split(body, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if rest, ok := cutMarker(line, markerDescription); ok {
			block := make([]string, 0, len(lines)-i)
			if rest != "" {
				block = append(block, rest)
			}
			for i+1 < len(lines) && !isDelimiter(lines[i+1]) {
				i++
				block = append(block, lines[i])
			}
			if text := strings.TrimSpace(strings.Join(block, "\n")); text != "" {
				r.Description = text
			}
			continue
		}

		for _, m := range singleLineMarkers {
			rest, ok := cutMarker(line, m.marker)
			if !ok {
				continue
			}
			if m.marker == markerWallet {
				rest = strings.Trim(rest, "`")
			}
			if rest != "" {
				*m.field(r) = rest
			}
			break
		}
	}

	if match := imagePattern.FindStringSubmatch(body); match != nil {
		if wellFormedURL(match[1]) {
			r.ImageURL = match[1]
		}
	}

	if r.Title == domain.Unspecified && r.ArtistName == domain.Unspecified {
		return nil, domain.ErrMalformedRecord
	}
	return r, nil
}

func cutMarker(line, marker string) (string, bool) {
	rest, ok := strings.CutPrefix(line, marker)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// isDelimiter reports whether the line starts a new field, ending the
// description block.
func isDelimiter(line string) bool {
	if imagePattern.MatchString(line) {
		return true
	}
	if strings.HasPrefix(line, markerDescription) {
		return true
	}
	for _, m := range singleLineMarkers {
		if strings.HasPrefix(line, m.marker) {
			return true
		}
	}
	return false
}

func wellFormedURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IssueTitle composes the tracker-facing title for a new submission.
func IssueTitle(r *domain.Record) string {
	return fmt.Sprintf("🖼️ Nova Submissão: %q por %s", r.Title, r.ArtistName)
}
