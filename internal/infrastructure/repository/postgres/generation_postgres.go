package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
)

// GenerationRepo stores the metadata of every generated image. The pixel
// data itself lives on disk under the output directory.
type GenerationRepo struct {
	Db *pgxpool.Pool
}

func NewGenerationRepo(db *pgxpool.Pool) *GenerationRepo {
	return &GenerationRepo{db}
}

func OpenDatabaseConnPool(dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelFunc()

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return pool, nil
}

func (g *GenerationRepo) SaveGeneration(ctx context.Context, m *domain.GenerationMetadata) error {
	query := `
	 insert into generations
	 (id, prompt, enhanced_prompt, quality, steps, guidance_scale, width, height, seed, backend, file_path, duration_ms, created_at)
	 values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := g.Db.Exec(ctx, query,
		m.ID, m.Prompt, m.EnhancedPrompt, string(m.Quality), m.Steps, m.GuidanceScale,
		m.Width, m.Height, m.Seed, m.Backend, m.FilePath, m.Duration.Milliseconds(), m.CreatedAt)
	if err != nil {
		return domain.NewDomainError(domain.ErrCodePersisting, "failed to save generation metadata", err)
	}

	return nil
}

func (g *GenerationRepo) ListRecent(ctx context.Context, limit int) ([]domain.GenerationMetadata, error) {
	query := `
	 select id, prompt, enhanced_prompt, quality, steps, guidance_scale, width, height, seed, backend, file_path, duration_ms, created_at
	 from generations
	 order by created_at desc
	 limit $1
	`

	rows, err := g.Db.Query(ctx, query, limit)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodePersisting, "failed to list generations", err)
	}
	defer rows.Close()

	var results []domain.GenerationMetadata
	for rows.Next() {
		var m domain.GenerationMetadata
		var quality string
		var durationMs int64
		err := rows.Scan(&m.ID, &m.Prompt, &m.EnhancedPrompt, &quality, &m.Steps, &m.GuidanceScale,
			&m.Width, &m.Height, &m.Seed, &m.Backend, &m.FilePath, &durationMs, &m.CreatedAt)
		if err != nil {
			return nil, domain.NewDomainError(domain.ErrCodePersisting, "failed to scan generation row", err)
		}
		m.Quality = domain.Quality(quality)
		m.Duration = time.Duration(durationMs) * time.Millisecond
		results = append(results, m)
	}

	if rows.Err() != nil {
		return nil, domain.NewDomainError(domain.ErrCodePersisting, "failed to iterate generation rows", rows.Err())
	}

	return results, nil
}
