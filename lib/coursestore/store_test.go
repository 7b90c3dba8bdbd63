package coursestore

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"mybest-backend/lib/scrapers/elearning/parse"
	"mybest-backend/lib/testutil"
)

func setupStore(t *testing.T) Store {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "coursestore",
		DbSchema: Schema,
	})
	t.Cleanup(cleanup)
	return NewStore(res.DB)
}

func TestReplaceAllCourses(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first := []parse.Course{
		{EncryptedId: "ENCA", Name: "Basis Data", Day: "Senin", StartTime: "08:00"},
		{EncryptedId: "ENCB", Name: "Pemrograman Web", Day: "Rabu", StartTime: "10:00"},
	}
	require.NoError(t, store.ReplaceAllCourses(ctx, first))

	got, err := store.Courses(ctx)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(first, got))

	// a fresh scrape fully replaces the previous one
	second := []parse.Course{
		{EncryptedId: "ENCC", Name: "Statistika", Day: "Jumat", StartTime: "13:00"},
	}
	require.NoError(t, store.ReplaceAllCourses(ctx, second))

	got, err = store.Courses(ctx)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(second, got))
}

func TestCoursesPreserveScrapeOrder(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	courses := []parse.Course{
		{EncryptedId: "ENC1", Name: "Senin Pagi", Day: "Senin"},
		{EncryptedId: "ENC2", Name: "Senin Siang", Day: "Senin"},
		{EncryptedId: "ENC3", Name: "Selasa", Day: "Selasa"},
	}
	require.NoError(t, store.ReplaceAllCourses(ctx, courses))

	got, err := store.Courses(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range courses {
		require.Equal(t, courses[i].Name, got[i].Name)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, ok, err := store.Profile(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.UpsertProfile(ctx, parse.Profile{
		Name:  "Budi Santoso",
		Email: "budi@example.com",
	}))
	require.NoError(t, store.UpsertProfile(ctx, parse.Profile{
		Name:  "Budi Santoso",
		Email: "budi.baru@example.com",
	}))

	profile, ok, err := store.Profile(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "budi.baru@example.com", profile.Email)
}

func TestNotifications(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendNotification(ctx, "Jadwal diperbarui", "2 kelas berubah"))
	require.NoError(t, store.AppendNotification(ctx, "Tugas baru", "Basis Data pertemuan 4"))

	got, err := store.Notifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// newest first
	require.Equal(t, "Tugas baru", got[0].Title)
	require.Equal(t, "Jadwal diperbarui", got[1].Title)
}
