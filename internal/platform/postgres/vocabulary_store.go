package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/platform/logger"
	"github.com/phrazzld/vocab-review/internal/store"
)

// PostgresVocabularyStore implements store.VocabularyStore.
type PostgresVocabularyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVocabularyStore creates a vocabulary store over db.
// If logger is nil, a default logger will be used.
func NewPostgresVocabularyStore(db store.DBTX, logger *slog.Logger) *PostgresVocabularyStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresVocabularyStore{
		db:     db,
		logger: logger.With(slog.String("component", "vocabulary_store")),
	}
}

var _ store.VocabularyStore = (*PostgresVocabularyStore)(nil)

// GetWordsByList implements store.VocabularyStore.
func (s *PostgresVocabularyStore) GetWordsByList(ctx context.Context, listID uuid.UUID) ([]domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, list_id, term, definition, phonetics, image_url
		FROM vocabulary
		WHERE list_id = $1
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, listID)
	if err != nil {
		log.Error("failed to query words by list",
			slog.String("error", err.Error()),
			slog.String("list_id", listID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	words := make([]domain.Word, 0)
	for rows.Next() {
		var w domain.Word
		var phonetics, imageURL sql.NullString
		if err := rows.Scan(&w.ID, &w.ListID, &w.Term, &w.Definition, &phonetics, &imageURL); err != nil {
			return nil, MapError(err)
		}
		w.Phonetics = phonetics.String
		w.ImageURL = imageURL.String
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("retrieved words by list",
		slog.String("list_id", listID.String()),
		slog.Int("count", len(words)))
	return words, nil
}

// GetExamplesForWords implements store.VocabularyStore.
func (s *PostgresVocabularyStore) GetExamplesForWords(
	ctx context.Context,
	wordIDs []uuid.UUID,
) (map[uuid.UUID][]string, error) {
	query := `
		SELECT vocabulary_id, example_sentence
		FROM vocabulary_examples
		WHERE vocabulary_id = ANY($1)
		ORDER BY vocabulary_id, id
	`
	return s.groupedStrings(ctx, "examples", query, wordIDs)
}

// GetSynonymsForWords implements store.VocabularyStore.
func (s *PostgresVocabularyStore) GetSynonymsForWords(
	ctx context.Context,
	wordIDs []uuid.UUID,
) (map[uuid.UUID][]string, error) {
	query := `
		SELECT word_id, synonym
		FROM word_synonyms
		WHERE word_id = ANY($1)
		ORDER BY word_id, id
	`
	return s.groupedStrings(ctx, "synonyms", query, wordIDs)
}

// AddExamples implements store.VocabularyStore.
func (s *PostgresVocabularyStore) AddExamples(
	ctx context.Context,
	wordID uuid.UUID,
	examples []string,
) (int, error) {
	if len(examples) == 0 {
		return 0, nil
	}

	// Concurrent generators for the same word race here; the first writer wins.
	query := `
		INSERT INTO vocabulary_examples (vocabulary_id, example_sentence)
		SELECT $1, sentence
		FROM unnest($2::text[]) AS sentence
		WHERE NOT EXISTS (
			SELECT 1 FROM vocabulary_examples WHERE vocabulary_id = $1
		)
	`

	result, err := s.db.ExecContext(ctx, query, wordID, examples)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to store word examples",
			slog.String("error", err.Error()),
			slog.String("word_id", wordID.String()))
		return 0, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}
	return int(n), nil
}

// groupedStrings runs a (word id, text) query and groups the text by word id.
func (s *PostgresVocabularyStore) groupedStrings(
	ctx context.Context,
	kind string,
	query string,
	wordIDs []uuid.UUID,
) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string)
	if len(wordIDs) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, query, wordIDs)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query word "+kind,
			slog.String("error", err.Error()),
			slog.Int("word_count", len(wordIDs)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id uuid.UUID
		var text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, MapError(err)
		}
		out[id] = append(out[id], text)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}
