package source

import (
	"context"
	"net/http"
	"strings"
	"unicode"

	"github.com/JPrier/JobSearch/internal/errors"
	"github.com/JPrier/JobSearch/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Board is one job board. Fetch returns the raw postings for one search; it
// does not filter or score.
type Board interface {
	Name() string

	Fetch(ctx context.Context, params models.SearchParams) ([]models.Posting, error)
}

// Registry returns all known boards keyed by name, sharing one HTTP client.
func Registry(client *http.Client, logger *zap.Logger) map[string]Board {
	boards := []Board{
		NewRemoteOK(client, logger),
		NewWeWorkRemotely(client, logger),
	}

	registry := make(map[string]Board, len(boards))
	for _, b := range boards {
		registry[b.Name()] = b
	}
	return registry
}

// Select resolves configured board names against the registry, preserving the
// configured order. An unknown name is a configuration error.
func Select(names []string, registry map[string]Board) ([]Board, error) {
	selected := make([]Board, 0, len(names))
	for _, name := range names {
		board, ok := registry[strings.ToLower(name)]
		if !ok {
			return nil, errors.Config("unknown board: "+name, nil)
		}
		selected = append(selected, board)
	}
	return selected, nil
}

var idNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// postingID derives a stable ID from the board name and job URL so the same
// posting gets the same ID on every run.
func postingID(board, jobURL string) string {
	return uuid.NewSHA1(idNamespace, []byte(board+"|"+jobURL)).String()
}

func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.TrimSpace(result)
}
