package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/llmstudio/studio-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ragChunkSize           = 500
	ragChunkOverlap        = 100
	ragSimilarityThreshold = 0.7
	ragDefaultTopK         = 4
)

// Embedder turns texts into embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// RAGService ingests plain-text documents into embedded chunks and
// retrieves the most similar chunks for a query.
type RAGService struct {
	db       *gorm.DB
	embedder Embedder
}

func NewRAGService(db *gorm.DB, embedder Embedder) *RAGService {
	return &RAGService{db: db, embedder: embedder}
}

// Ingest loads .txt and .md files from dir, splits them into overlapping
// chunks, embeds each chunk and stores the results. Re-ingesting a file
// replaces its previous chunks.
func (s *RAGService) Ingest(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read document directory: %w", err)
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			slog.Warn("skipping unreadable document", "file", entry.Name(), "error", err)
			continue
		}

		chunks := SplitText(string(raw), ragChunkSize, ragChunkOverlap)
		if len(chunks) == 0 {
			continue
		}

		vectors, err := s.embedder.Embed(ctx, chunks)
		if err != nil {
			return total, fmt.Errorf("failed to embed %s: %w", entry.Name(), err)
		}
		if len(vectors) != len(chunks) {
			return total, fmt.Errorf("embedding count mismatch for %s", entry.Name())
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("source_file = ?", entry.Name()).Delete(&models.DocumentChunk{}).Error; err != nil {
				return err
			}
			for i, content := range chunks {
				blob, err := json.Marshal(vectors[i])
				if err != nil {
					return err
				}
				chunk := models.DocumentChunk{
					ID:         uuid.New(),
					SourceFile: entry.Name(),
					ChunkIndex: i,
					Content:    content,
					Embedding:  datatypes.JSON(blob),
				}
				if err := tx.Create(&chunk).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return total, err
		}
		total += len(chunks)
	}

	slog.Info("document ingestion completed", "chunks", total)
	return total, nil
}

type scoredChunk struct {
	content    string
	similarity float32
}

// Retrieve embeds the query and returns the topK most similar chunk
// contents above the similarity threshold.
func (s *RAGService) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = ragDefaultTopK
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVec := vectors[0]

	var chunks []models.DocumentChunk
	if err := s.db.Find(&chunks).Error; err != nil {
		return nil, err
	}

	scored := make([]scoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		var vec []float32
		if err := json.Unmarshal(chunk.Embedding, &vec); err != nil || len(vec) == 0 {
			continue
		}
		sim := CosineSimilarity(queryVec, vec)
		if sim >= ragSimilarityThreshold {
			scored = append(scored, scoredChunk{content: chunk.Content, similarity: sim})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].similarity > scored[j].similarity
	})

	results := make([]string, 0, topK)
	for i := 0; i < len(scored) && i < topK; i++ {
		results = append(results, scored[i].content)
	}
	return results, nil
}

// SplitText splits text into chunks of roughly size runes with the given
// overlap, preferring whitespace boundaries.
func SplitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	step := size - overlap
	if step <= 0 {
		step = size
	}
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// CosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when dimensions mismatch or either vector is zero.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float32
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(magA))) * float32(math.Sqrt(float64(magB))))
}
