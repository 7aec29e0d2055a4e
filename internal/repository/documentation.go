package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/papayaah/invoicees/internal/common"
	"github.com/papayaah/invoicees/internal/entity"
)

// DocumentationRepository holds the help topics shown for utterances that are
// not about the invoice.
type DocumentationRepository interface {
	// SeedDefaults loads the built-in topics into an empty table and reports
	// how many were added.
	SeedDefaults(ctx context.Context) (int, error)
	Add(ctx context.Context, doc entity.Documentation) error
	// Search returns topics whose text contains any word of query,
	// case-insensitively, in the order they were added.
	Search(ctx context.Context, query string) ([]entity.Documentation, error)
}

type documentationRepository struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewDocumentationRepository(db *DB, logger *slog.Logger) DocumentationRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentationRepository{db: db, logger: logger, now: time.Now}
}

func (r *documentationRepository) SeedDefaults(ctx context.Context) (int, error) {
	var count int
	if err := r.db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM documentation`).Scan(&count); err != nil {
		return 0, common.NewAppError("DB_ERROR", "count documentation", errors.Join(common.ErrDatabase, err))
	}
	if count > 0 {
		return 0, nil
	}

	base := r.now()
	for i, d := range defaultDocumentation {
		d.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		if err := r.Add(ctx, d); err != nil {
			return i, err
		}
	}
	r.logger.Info("repo.docs.seeded", "topics", len(defaultDocumentation))
	return len(defaultDocumentation), nil
}

func (r *documentationRepository) Add(ctx context.Context, doc entity.Documentation) error {
	v := common.NewValidator().
		Field("topic", doc.Topic, common.Required, common.MaxLength(200)).
		Field("content", doc.Content, common.Required)
	if err := common.ValidateAndReturnError(v); err != nil {
		return err
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = r.now()
	}
	if doc.Keywords == nil {
		doc.Keywords = []string{}
	}
	kw, err := json.Marshal(doc.Keywords)
	if err != nil {
		return err
	}

	q := r.db.rebind(`INSERT INTO documentation (topic, content, keywords, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (topic) DO UPDATE SET
			content  = excluded.content,
			keywords = excluded.keywords`)
	if _, err := r.db.sql.ExecContext(ctx, q, doc.Topic, doc.Content, string(kw), doc.CreatedAt.UnixMilli()); err != nil {
		return common.NewAppError("DB_ERROR", "add documentation", errors.Join(common.ErrDatabase, err))
	}
	return nil
}

func (r *documentationRepository) Search(ctx context.Context, query string) ([]entity.Documentation, error) {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return nil, nil
	}

	rows, err := r.db.sql.QueryContext(ctx, `SELECT topic, content, keywords, created_at FROM documentation ORDER BY created_at, topic`)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "search documentation", errors.Join(common.ErrDatabase, err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("repo.docs.rows_close_error", "error", err)
		}
	}()

	var out []entity.Documentation
	for rows.Next() {
		var (
			d         entity.Documentation
			kw        string
			createdAt int64
		)
		if err := rows.Scan(&d.Topic, &d.Content, &kw, &createdAt); err != nil {
			return nil, common.NewAppError("DB_ERROR", "scan documentation", errors.Join(common.ErrDatabase, err))
		}
		if err := json.Unmarshal([]byte(kw), &d.Keywords); err != nil {
			r.logger.Warn("repo.docs.bad_keywords", "topic", d.Topic, "error", err)
		}
		d.CreatedAt = time.UnixMilli(createdAt).UTC()

		text := strings.ToLower(d.Topic + " " + d.Content + " " + strings.Join(d.Keywords, " "))
		for _, w := range words {
			if strings.Contains(text, w) {
				out = append(out, d)
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "search documentation", errors.Join(common.ErrDatabase, err))
	}
	r.logger.Debug("repo.docs.search", "words", len(words), "hits", len(out))
	return out, nil
}
