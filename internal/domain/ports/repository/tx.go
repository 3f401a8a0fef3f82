package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function inside a database transaction,
// handing the transaction handle to repositories through the `tx` argument.
// Repositories must gracefully accept a nil handle (non-transactional path);
// the concrete type is infra-defined (pgx.Tx for Postgres).
//
// The payment flow deliberately avoids multi-statement transactions across the
// status transition and the access grant (idempotency covers redelivery), but
// the seed tooling and admin operations still use this.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
