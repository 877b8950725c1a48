// Package postgres wraps a gorm connection pool with health monitoring,
// automatic reconnection and transaction helpers.
//
// The pool is held in an atomic pointer so the reconnect loop can replace it
// while readers keep calling DB(). Errors leaving the package are run through
// TranslateError, which maps them onto sentinels such as ErrConnectivity and
// ErrDuplicateKey:
//
//	err := pg.Transaction(ctx, func(tx *postgres.Postgres) error {
//		return tx.DB().Create(&rows).Error
//	})
//	if errors.Is(err, postgres.ErrConnectivity) {
//		// the server is gone, stop the run
//	}
package postgres
