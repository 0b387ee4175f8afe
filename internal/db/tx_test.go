package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type stubTx struct {
	pgx.Tx
	committed   bool
	rolledBack  bool
	rollbackErr error
}

func (t *stubTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return t.rollbackErr
}

type stubBeginner struct {
	tx  *stubTx
	err error
}

func (b stubBeginner) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestWithTxCommits(t *testing.T) {
	tx := &stubTx{}
	if err := WithTx(context.Background(), stubBeginner{tx: tx}, func(ctx context.Context, _ pgx.Tx) error {
		return nil
	}); err != nil {
		t.Fatalf("WithTx falhou: %v", err)
	}
	if !tx.committed || tx.rolledBack {
		t.Fatalf("esperava commit sem rollback: %+v", tx)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	boom := errors.New("falhou")
	tx := &stubTx{rollbackErr: pgx.ErrTxClosed}
	err := WithTx(context.Background(), stubBeginner{tx: tx}, func(ctx context.Context, _ pgx.Tx) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("erro = %v", err)
	}
	if tx.committed || !tx.rolledBack {
		t.Fatalf("esperava rollback sem commit: %+v", tx)
	}
}

func TestWithTxJoinsRollbackFailure(t *testing.T) {
	boom := errors.New("falhou")
	rbErr := errors.New("conexão perdida")
	err := WithTx(context.Background(), stubBeginner{tx: &stubTx{rollbackErr: rbErr}}, func(ctx context.Context, _ pgx.Tx) error {
		return boom
	})
	if !errors.Is(err, boom) || !errors.Is(err, rbErr) {
		t.Fatalf("erro = %v", err)
	}
}

func TestWithTxBeginFailure(t *testing.T) {
	beginErr := errors.New("sem conexão")
	err := WithTx(context.Background(), stubBeginner{err: beginErr}, func(ctx context.Context, _ pgx.Tx) error {
		t.Fatal("fn não deveria rodar")
		return nil
	})
	if !errors.Is(err, beginErr) {
		t.Fatalf("erro = %v", err)
	}
}
