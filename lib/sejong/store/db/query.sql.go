// source: query.sql

package db

import (
	"context"
)

const createSnapshot = `-- name: CreateSnapshot :exec
insert into auth_snapshot(student_id, variant, taken_at, result)
values (?, ?, ?, ?)
`

type CreateSnapshotParams struct {
	StudentID string
	Variant   string
	TakenAt   int64
	Result    string
}

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, createSnapshot,
		arg.StudentID,
		arg.Variant,
		arg.TakenAt,
		arg.Result,
	)
	return err
}

const deleteSnapshotsIn = `-- name: DeleteSnapshotsIn :exec
delete from auth_snapshot
where student_id = ?1
    and variant = ?2
    and taken_at >= ?3
    and taken_at < ?4
`

type DeleteSnapshotsInParams struct {
	StudentID string
	Variant   string
	After     int64
	Before    int64
}

func (q *Queries) DeleteSnapshotsIn(ctx context.Context, arg DeleteSnapshotsInParams) error {
	_, err := q.db.ExecContext(ctx, deleteSnapshotsIn,
		arg.StudentID,
		arg.Variant,
		arg.After,
		arg.Before,
	)
	return err
}

const getSnapshots = `-- name: GetSnapshots :many
select id, student_id, variant, taken_at, result from auth_snapshot
where student_id = ?
order by taken_at desc, id desc
limit ?
`

type GetSnapshotsParams struct {
	StudentID string
	Limit     int64
}

func (q *Queries) GetSnapshots(ctx context.Context, arg GetSnapshotsParams) ([]AuthSnapshot, error) {
	rows, err := q.db.QueryContext(ctx, getSnapshots, arg.StudentID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AuthSnapshot
	for rows.Next() {
		var i AuthSnapshot
		if err := rows.Scan(
			&i.ID,
			&i.StudentID,
			&i.Variant,
			&i.TakenAt,
			&i.Result,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getStudents = `-- name: GetStudents :many
select student_id, count(*) as snapshots, max(taken_at) as last_taken_at
from auth_snapshot
group by student_id
order by student_id
`

type GetStudentsRow struct {
	StudentID   string
	Snapshots   int64
	LastTakenAt int64
}

func (q *Queries) GetStudents(ctx context.Context) ([]GetStudentsRow, error) {
	rows, err := q.db.QueryContext(ctx, getStudents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetStudentsRow
	for rows.Next() {
		var i GetStudentsRow
		if err := rows.Scan(&i.StudentID, &i.Snapshots, &i.LastTakenAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
