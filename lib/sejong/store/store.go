// Package store keeps snapshots of authentication results so changes in a
// student's certification progress can be followed over time.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sejongauth/lib/sejong"
	"sejongauth/lib/sejong/store/db"
	"sejongauth/lib/timezone"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sejongauth/store")

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

// Migrate creates the tables if they do not exist yet.
func (s Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, db.Schema)
	return err
}

type Snapshot struct {
	Time    time.Time
	Variant string
	Result  sejong.AuthResult
}

type PushRequest struct {
	Time time.Time
	// Variant tells apart snapshots of different authentication variants
	// (ex. "merged", "dhc").
	Variant string
	Result  sejong.AuthResult
}

// Push stores a snapshot, replacing the snapshot of the same student and
// variant taken earlier the same day (KST). The raw html is never stored.
func (s Store) Push(ctx context.Context, req PushRequest) error {
	ctx, span := tracer.Start(ctx, "Push")
	defer span.End()

	studentId := req.Result.StudentInfo.StudentId
	if studentId == "" {
		return fmt.Errorf("snapshot has no student id")
	}
	span.SetAttributes(
		attribute.String("student_id", studentId),
		attribute.String("variant", req.Variant),
	)

	result := req.Result
	result.RawHtml = ""
	serialized, err := json.Marshal(result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize result")
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	startOfToday := timezone.StartOfDay(req.Time)
	startOfTomorrow := startOfToday.AddDate(0, 0, 1)
	err = txqry.DeleteSnapshotsIn(ctx, db.DeleteSnapshotsInParams{
		StudentID: studentId,
		Variant:   req.Variant,
		After:     startOfToday.Unix(),
		Before:    startOfTomorrow.Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err = txqry.CreateSnapshot(ctx, db.CreateSnapshotParams{
		StudentID: studentId,
		Variant:   req.Variant,
		TakenAt:   req.Time.Unix(),
		Result:    string(serialized),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return tx.Commit()
}

// Pull returns at most `limit` snapshots of a student, newest first.
func (s Store) Pull(ctx context.Context, studentId string, limit int) ([]Snapshot, error) {
	ctx, span := tracer.Start(ctx, "Pull")
	defer span.End()
	span.SetAttributes(attribute.String("student_id", studentId))

	rows, err := s.qry.GetSnapshots(ctx, db.GetSnapshotsParams{
		StudentID: studentId,
		Limit:     int64(limit),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(rows))
	for _, r := range rows {
		var result sejong.AuthResult
		err = json.Unmarshal([]byte(r.Result), &result)
		if err != nil {
			slog.WarnContext(ctx, "failed to unmarshal snapshot", "id", r.ID, "err", err)
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Time:    time.Unix(r.TakenAt, 0).In(timezone.Location),
			Variant: r.Variant,
			Result:  result,
		})
	}
	return snapshots, nil
}

type Student struct {
	StudentId string
	Snapshots int
	LastTaken time.Time
}

// Students lists every student that has at least one snapshot.
func (s Store) Students(ctx context.Context) ([]Student, error) {
	rows, err := s.qry.GetStudents(ctx)
	if err != nil {
		return nil, err
	}
	students := make([]Student, len(rows))
	for i, r := range rows {
		students[i] = Student{
			StudentId: r.StudentID,
			Snapshots: int(r.Snapshots),
			LastTaken: time.Unix(r.LastTakenAt, 0).In(timezone.Location),
		}
	}
	return students, nil
}
