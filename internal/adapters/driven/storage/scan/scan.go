// Package scan holds the brute-force nearest-neighbour search shared by the
// vector store backends. Every backend iterates its entries through a Ranker
// and turns the ranked hits into a driven.QueryResult.
package scan

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

var collectionName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{1,61}[a-zA-Z0-9]$`)

// ValidateName checks a collection name: 3-63 characters from [a-zA-Z0-9._-],
// starting and ending with a letter or digit, without "..".
func ValidateName(name string) error {
	if !collectionName.MatchString(name) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", domain.ErrCollectionName, name)
	}
	return nil
}

// Distance returns the cosine distance 1 - cos(a, b).
// Zero vectors are treated as orthogonal to everything.
func Distance(a, b []float32) float64 {
	var dot, na, nb float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Hit is one scored entry.
type Hit struct {
	Entry    domain.CorpusEntry
	Distance float64
	seq      int
}

// Ranker collects the k nearest entries to one query vector.
type Ranker struct {
	query []float32
	k     int
	hits  []Hit
	seen  int
}

// NewRanker creates a ranker for query keeping at most k hits.
func NewRanker(query []float32, k int) *Ranker {
	return &Ranker{query: query, k: k}
}

// Add scores entry against the query. Entries of a different
// dimensionality are rejected.
func (r *Ranker) Add(entry domain.CorpusEntry) error {
	if len(entry.Embedding) != len(r.query) {
		return fmt.Errorf("%w: entry %s has %d dimensions, query has %d",
			domain.ErrDimensionMismatch, entry.ID, len(entry.Embedding), len(r.query))
	}
	r.hits = append(r.hits, Hit{Entry: entry, Distance: Distance(r.query, entry.Embedding), seq: r.seen})
	r.seen++

	// Trim occasionally so memory stays bounded by ~2k.
	if r.k > 0 && len(r.hits) >= 2*r.k+64 {
		r.sort()
		r.hits = r.hits[:r.k]
	}
	return nil
}

// Hits returns the nearest entries, best first. Ties keep insertion order.
func (r *Ranker) Hits() []Hit {
	r.sort()
	if r.k >= 0 && len(r.hits) > r.k {
		r.hits = r.hits[:r.k]
	}
	return r.hits
}

func (r *Ranker) sort() {
	slices.SortStableFunc(r.hits, func(a, b Hit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return a.seq - b.seq
		}
	})
}

// Query runs req against every entry produced by each. each is called once
// per query vector and must feed every stored entry to add.
func Query(req driven.QueryRequest, each func(add func(domain.CorpusEntry) error) error) (driven.QueryResult, error) {
	res := driven.QueryResult{
		IDs:       make([][]string, 0, len(req.Embeddings)),
		Documents: make([][]string, 0, len(req.Embeddings)),
		Metadatas: make([][]map[string]string, 0, len(req.Embeddings)),
		Distances: make([][]float64, 0, len(req.Embeddings)),
	}
	if req.K <= 0 {
		return res, fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}

	for _, vector := range req.Embeddings {
		if len(vector) == 0 {
			return res, domain.ErrEmptyEmbedding
		}
		ranker := NewRanker(vector, req.K)
		if err := each(ranker.Add); err != nil {
			return res, err
		}
		appendHits(&res, ranker.Hits())
	}
	return res, nil
}

func appendHits(res *driven.QueryResult, hits []Hit) {
	ids := make([]string, len(hits))
	docs := make([]string, len(hits))
	metas := make([]map[string]string, len(hits))
	dists := make([]float64, len(hits))
	for i, h := range hits {
		ids[i] = h.Entry.ID
		docs[i] = h.Entry.Contents
		metas[i] = h.Entry.Metadata.Map()
		dists[i] = h.Distance
	}
	res.IDs = append(res.IDs, ids)
	res.Documents = append(res.Documents, docs)
	res.Metadatas = append(res.Metadatas, metas)
	res.Distances = append(res.Distances, dists)
}
