package experience

import (
	"context"
	"database/sql"
	"encoding/binary"
	"hash/fnv"
	"math"

	_ "github.com/mattn/go-sqlite3"

	"github.com/XiaoConstantine/swexp-go/pkg/core"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

// Index is a SQLite-backed cache of record embeddings, keyed by problem ID
// and invalidated by a hash of the source issue text. Vectors are stored
// L2-normalized as little-endian float32 BLOBs, so retrieval-time cosine is
// a plain dot product. A store append changes nothing for existing keys and
// lazily embeds the new ones on the next Ensure pass.
type Index struct {
	db *sql.DB
}

const indexSchema = `
CREATE TABLE IF NOT EXISTS record_embeddings (
	problem_id TEXT PRIMARY KEY,
	text_hash  INTEGER NOT NULL,
	dim        INTEGER NOT NULL,
	vector     BLOB NOT NULL
);`

// OpenIndex opens (creating if needed) an embedding index file.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to open embedding index"),
			errors.Fields{"path": path})
	}
	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.Unknown, "failed to create embedding index schema")
	}
	return &Index{db: db}, nil
}

// Close releases the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Ensure embeds every store key whose cached vector is missing or stale
// (source issue text changed since it was embedded). Embeddings are
// normalized before storage.
func (ix *Index) Ensure(ctx context.Context, store *Store, embedder core.LLM) error {
	for _, problemID := range store.Keys() {
		recs, _ := store.Get(problemID)
		if len(recs) == 0 {
			continue
		}
		text := recs[0].SourceIssue
		hash := textHash(text)

		if _, ok, err := ix.vector(problemID, hash); err != nil {
			return err
		} else if ok {
			continue
		}

		result, err := embedder.CreateEmbedding(ctx, text)
		if err != nil {
			return errors.WithFields(
				errors.Wrap(err, errors.EmbeddingFailed, "failed to embed store record"),
				errors.Fields{"problem_id": problemID})
		}
		if err := ix.put(problemID, hash, normalize(result.Vector)); err != nil {
			return err
		}
	}
	return nil
}

// Vector returns the cached, normalized embedding for a problem's source
// issue text, if current.
func (ix *Index) Vector(problemID, sourceIssue string) ([]float32, bool, error) {
	return ix.vector(problemID, textHash(sourceIssue))
}

func (ix *Index) vector(problemID string, hash int64) ([]float32, bool, error) {
	var storedHash int64
	var dim int
	var blob []byte
	err := ix.db.QueryRow(
		"SELECT text_hash, dim, vector FROM record_embeddings WHERE problem_id = ?",
		problemID,
	).Scan(&storedHash, &dim, &blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.Unknown, "failed to query embedding index")
	}
	if storedHash != hash {
		// stale row; caller recomputes
		return nil, false, nil
	}
	return decodeVector(blob, dim), true, nil
}

func (ix *Index) put(problemID string, hash int64, vec []float32) error {
	_, err := ix.db.Exec(
		`INSERT INTO record_embeddings (problem_id, text_hash, dim, vector) VALUES (?, ?, ?, ?)
		 ON CONFLICT(problem_id) DO UPDATE SET text_hash = excluded.text_hash, dim = excluded.dim, vector = excluded.vector`,
		problemID, hash, len(vec), encodeVector(vec),
	)
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to write embedding index")
	}
	return nil
}

func textHash(text string) int64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	return int64(h.Sum64())
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte, dim int) []float32 {
	if len(blob) < 4*dim {
		dim = len(blob) / 4
	}
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec
}

// normalize L2-normalizes a vector in a fresh slice. A zero vector is
// returned unchanged.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		out := make([]float32, len(vec))
		copy(out, vec)
		return out
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

// dot computes the inner product of two equal-length vectors; on unit
// vectors this is the cosine similarity.
func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
