package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// FindPersonIDsByName searches persons whose name columns contain the query
// string and returns their IDs in a stable order.
func FindPersonIDsByName(db *sql.DB, query string) ([]uint, error) {
	likeQuery := "%" + query + "%"
	queryBuilder := psql.Select("id").
		From("persons").
		Where(sq.Or{
			sq.Like{"first_name": likeQuery},
			sq.Like{"middle_name": likeQuery},
			sq.Like{"last_name": likeQuery},
			sq.Like{"birth_name": likeQuery},
			sq.Like{"artist_name": likeQuery},
		}).
		OrderBy("id ASC")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for FindPersonIDsByName: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FindPersonIDsByName query for %q: %w", query, err)
	}
	defer rows.Close()

	ids := []uint{}
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan person ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListChildIDs returns the IDs of persons that reference the given person as
// their mother or father.
func ListChildIDs(db *sql.DB, parentID uint) ([]uint, error) {
	queryBuilder := psql.Select("id").
		From("persons").
		Where(sq.Or{
			sq.Eq{"mother_id": parentID},
			sq.Eq{"father_id": parentID},
		}).
		OrderBy("id ASC")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListChildIDs: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListChildIDs query for person %d: %w", parentID, err)
	}
	defer rows.Close()

	ids := []uint{}
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan child ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
