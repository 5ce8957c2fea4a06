// Package sqlxrepos implements the domain repositories on top of jmoiron/sqlx.
// Queries use "?" placeholders, rebound to the driver's bind type.
package sqlxrepos

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core"
)

type repository struct {
	exec core.DBExecutor
}

func (repo repository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// notFound maps sql.ErrNoRows to errNotFound.
func notFound(err, errNotFound error) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return errNotFound
	}
	return err
}
