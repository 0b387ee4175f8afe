package cloud

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/apadrinhaparana/demandas/internal/db"
	"github.com/apadrinhaparana/demandas/internal/demanda"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documentos (
    colecao       text        NOT NULL,
    documento     text        NOT NULL,
    dados         jsonb       NOT NULL DEFAULT '{}'::jsonb,
    atualizado_em timestamptz NOT NULL DEFAULT now(),
    PRIMARY KEY (colecao, documento)
)`

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// PostgresStore guarda documentos JSONB em uma tabela única.
type PostgresStore struct {
	q querier
}

// NewPostgresStore cria o store sobre um pool pgx.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{q: pool}
}

// EnsureSchema cria a tabela de documentos se ainda não existir.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return db.WithTx(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, schemaSQL); err != nil {
			return classifyPg(err)
		}
		return nil
	})
}

func (s *PostgresStore) Get(ctx context.Context, collection, document string) (map[string]any, bool, error) {
	const query = `SELECT dados, atualizado_em FROM documentos WHERE colecao = $1 AND documento = $2`

	var (
		fields    map[string]any
		updatedAt time.Time
	)
	err := s.q.QueryRow(ctx, query, collection, document).Scan(&fields, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classifyPg(err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fields[FieldAtualizadoEm] = demanda.Timestamp(updatedAt)
	return fields, true, nil
}

func (s *PostgresStore) Merge(ctx context.Context, collection, document string, fields map[string]any) error {
	const query = `
        INSERT INTO documentos (colecao, documento, dados, atualizado_em)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (colecao, documento)
        DO UPDATE SET dados = documentos.dados || EXCLUDED.dados, atualizado_em = now()
    `
	delete(fields, FieldAtualizadoEm)
	if _, err := s.q.Exec(ctx, query, collection, document, fields); err != nil {
		return classifyPg(err)
	}
	return nil
}

// Ping permite usar o store como sonda de conectividade.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.q.Ping(ctx)
}

// classifyPg traduz erros do driver para ErrPermissionDenied e ErrOffline.
func classifyPg(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42501", "28000", "28P01":
			return fmt.Errorf("%w: %s", ErrPermissionDenied, pgErr.Message)
		}
		return fmt.Errorf("postgres: %w", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrOffline, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", ErrOffline, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrOffline, err)
	}
	return fmt.Errorf("postgres: %w", err)
}
