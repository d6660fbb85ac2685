package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// pg: invalid_text_representation (id que não é UUID)
const pgInvalidTextRepresentation = "22P02"

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

var (
	_ entity.LeadRepository = (*LeadRepository)(nil)
	_ entity.DraftAbandoner = (*LeadRepository)(nil)
)

func (r *LeadRepository) Create(ctx context.Context, lead *entity.LeadDraft) (string, error) {
	query := `
		INSERT INTO leads_reforma_tributaria (
			nome, email, whatsapp, nps, nps_comentario, area_atuacao, desafios,
			perguntas_palestrante, lgpd, marketing_opt_in, etapa_atual,
			etapa_completa, status, data_envio, data_ultima_atualizacao
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at
	`

	err := r.DB.QueryRowContext(ctx, query,
		lead.Name,
		lead.Email,
		lead.Phone,
		nullScore(lead.Score),
		nullString(lead.ScoreComment),
		nullString(string(lead.Role)),
		nullString(lead.Challenges),
		nullString(lead.Question),
		lead.Consent,
		lead.MarketingOptIn,
		int(lead.Step),
		lead.Completed,
		statusOrDraft(lead.Status),
		lead.CompletedAt,
		updatedAt(lead.UpdatedAt),
	).Scan(&lead.ID, &lead.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert lead: %w", err)
	}

	return lead.ID, nil
}

// Update overwrites the draft fields. Once a record is completed it stays
// completed and keeps its first completion date.
func (r *LeadRepository) Update(ctx context.Context, id string, lead *entity.LeadDraft) error {
	query := `
		UPDATE leads_reforma_tributaria SET
			nome = $2,
			email = $3,
			whatsapp = $4,
			nps = $5,
			nps_comentario = $6,
			area_atuacao = $7,
			desafios = $8,
			perguntas_palestrante = $9,
			lgpd = $10,
			marketing_opt_in = $11,
			etapa_atual = $12,
			etapa_completa = etapa_completa OR $13,
			status = CASE WHEN etapa_completa THEN status ELSE $14 END,
			data_envio = COALESCE(data_envio, $15),
			data_ultima_atualizacao = $16
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query,
		id,
		lead.Name,
		lead.Email,
		lead.Phone,
		nullScore(lead.Score),
		nullString(lead.ScoreComment),
		nullString(string(lead.Role)),
		nullString(lead.Challenges),
		nullString(lead.Question),
		lead.Consent,
		lead.MarketingOptIn,
		int(lead.Step),
		lead.Completed,
		statusOrDraft(lead.Status),
		lead.CompletedAt,
		updatedAt(lead.UpdatedAt),
	)
	if err != nil {
		if isInvalidID(err) {
			return entity.ErrLeadNotFound
		}
		return fmt.Errorf("update lead %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.LeadDraft, error) {
	query := `
		SELECT id, nome, email, whatsapp, nps, COALESCE(nps_comentario, ''),
		       COALESCE(area_atuacao, ''), COALESCE(desafios, ''),
		       COALESCE(perguntas_palestrante, ''), lgpd, marketing_opt_in,
		       etapa_atual, etapa_completa, status, data_envio,
		       data_ultima_atualizacao, created_at
		FROM leads_reforma_tributaria
		WHERE id = $1
	`

	var (
		lead  entity.LeadDraft
		score sql.NullInt32
		role  string
		step  int
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &score, &lead.ScoreComment,
		&role, &lead.Challenges, &lead.Question, &lead.Consent, &lead.MarketingOptIn,
		&step, &lead.Completed, &lead.Status, &lead.CompletedAt,
		&lead.UpdatedAt, &lead.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}

	if score.Valid {
		s := int(score.Int32)
		lead.Score = &s
	}
	lead.Role = entity.Role(role)
	lead.Step = entity.Step(step)
	return &lead, nil
}

// MarkAbandoned flags drafts without updates since idleSince.
func (r *LeadRepository) MarkAbandoned(ctx context.Context, idleSince time.Time) (int, error) {
	query := `
		UPDATE leads_reforma_tributaria
		SET status = 'ABANDONED'
		WHERE
			etapa_completa = FALSE
			AND status = 'DRAFT'
			AND data_ultima_atualizacao < $1
	`

	res, err := r.DB.ExecContext(ctx, query, idleSince)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgInvalidTextRepresentation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgInvalidTextRepresentation
	}
	return false
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullScore grava NULL fora de 0..10 para não violar o CHECK da coluna nps
func nullScore(score *int) any {
	if score == nil || *score < 0 || *score > 10 {
		return nil
	}
	return *score
}

func statusOrDraft(s string) string {
	if s == "" {
		return entity.StatusDraft
	}
	return s
}

func updatedAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
