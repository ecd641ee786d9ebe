package store

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	configlibsql "sejongauth/lib/configutil/libsql"
	"sejongauth/lib/sejong"
	"sejongauth/lib/testutil"
	"sejongauth/lib/timezone"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func sampleResult(studentId, certified string) sejong.AuthResult {
	reading := sejong.EmptyClassicReading()
	reading.Certifications = append(reading.Certifications, sejong.Certification{
		Area:           "서양의 역사와 사상",
		RequiredCount:  "4",
		CertifiedCount: certified,
	})
	return sejong.AuthResult{
		Success: true,
		StudentInfo: sejong.StudentInfo{
			StudentId: studentId,
			Name:      "홍길동",
			Major:     "컴퓨터공학과",
		},
		ClassicReading: reading,
		ContactInfo:    &sejong.ContactInfo{Email: "gildong@sju.ac.kr"},
		RawHtml:        "<html>status page</html>",
	}
}

func testStore(t *testing.T, database *sql.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	store := NewStore(database)
	require.NoError(t, store.Migrate(ctx))
	// migrating twice is harmless
	require.NoError(t, store.Migrate(ctx))

	{
		res, err := store.Pull(ctx, "unknown-student", 10)
		require.NoError(t, err)
		require.Len(t, res, 0)
	}

	day := time.Date(2024, time.March, 4, 10, 0, 0, 0, timezone.Location)

	require.NoError(t, store.Push(ctx, PushRequest{Time: day, Variant: "merged", Result: sampleResult("20012345", "1")}))
	// replaces the snapshot from the morning
	require.NoError(t, store.Push(ctx, PushRequest{Time: day.Add(time.Hour * 5), Variant: "merged", Result: sampleResult("20012345", "2")}))
	require.NoError(t, store.Push(ctx, PushRequest{Time: day.Add(time.Hour * 5), Variant: "dhc", Result: sampleResult("20012345", "2")}))
	require.NoError(t, store.Push(ctx, PushRequest{Time: day.AddDate(0, 0, 1), Variant: "merged", Result: sampleResult("20012345", "3")}))
	require.NoError(t, store.Push(ctx, PushRequest{Time: day, Variant: "merged", Result: sampleResult("19011111", "4")}))

	snapshots, err := store.Pull(ctx, "20012345", 10)
	require.NoError(t, err)
	require.Len(t, snapshots, 3)

	require.True(t, day.AddDate(0, 0, 1).Equal(snapshots[0].Time))
	require.Equal(t, "3", snapshots[0].Result.ClassicReading.Certifications[0].CertifiedCount)

	variants := []string{}
	for _, s := range snapshots {
		variants = append(variants, s.Variant)
		require.Empty(t, s.Result.RawHtml)
	}
	require.ElementsMatch(t, []string{"merged", "merged", "dhc"}, variants)

	expected := sampleResult("20012345", "2")
	expected.RawHtml = ""
	for _, s := range snapshots[1:] {
		if diff := cmp.Diff(expected.ClassicReading, s.Result.ClassicReading); diff != "" {
			t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
		}
	}

	limited, err := store.Pull(ctx, "20012345", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)

	students, err := store.Students(ctx)
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.Equal(t, "19011111", students[0].StudentId)
	require.Equal(t, 1, students[0].Snapshots)
	require.Equal(t, "20012345", students[1].StudentId)
	require.Equal(t, 3, students[1].Snapshots)

	err = store.Push(ctx, PushRequest{Time: day, Variant: "merged", Result: sejong.AuthResult{}})
	require.Error(t, err)
}

func TestStore(t *testing.T) {
	testStore(t, testutil.OpenDB(t, testutil.DBParams{Name: "store"}))
}

func TestStoreFile(t *testing.T) {
	path := t.TempDir() + "/snapshots.db"
	testStore(t, testutil.OpenDB(t, testutil.DBParams{Name: "store", Path: path}))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

// TestStoreLibsqlServer runs against a real libsql server, it needs docker
// and is only run when SEJONGAUTH_CONTAINER_TESTS is set.
func TestStoreLibsqlServer(t *testing.T) {
	if testing.Short() || os.Getenv("SEJONGAUTH_CONTAINER_TESTS") == "" {
		t.Skip("set SEJONGAUTH_CONTAINER_TESTS to run container tests")
	}

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	server, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "ghcr.io/tursodatabase/libsql-server:latest",
			ExposedPorts: []string{"8080/tcp"},
			WaitingFor:   wait.ForHTTP("/health").WithPort("8080/tcp"),
		},
	})
	require.NoError(t, err)
	defer func() {
		err := server.Terminate(context.Background())
		if err != nil {
			t.Fatal(err)
		}
	}()

	endpoint, err := server.PortEndpoint(ctx, "8080/tcp", "http")
	require.NoError(t, err)

	database, err := configlibsql.Struct{Url: endpoint}.OpenDB()
	require.NoError(t, err)
	defer database.Close()
	testStore(t, database)
}
