package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/pkg/circuitbreaker"
	"github.com/alem-hub/gradebook/pkg/logger"
)

func newTestMirror(t *testing.T) (*RankingMirror, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewCacheFromClient(client, "test:")
	return NewRankingMirror(cache, time.Hour), mr
}

func registration(email, names, courseName string, grade, credits, gpa float64) shared.RegistrationRecordedEvent {
	return shared.RegistrationRecordedEvent{
		BaseEvent:  shared.NewBaseEvent(shared.EventRegistrationRecorded, email),
		Email:      email,
		Names:      names,
		CourseName: courseName,
		Grade:      grade,
		Credits:    credits,
		GPA:        gpa,
	}
}

func hashJSON(t *testing.T, mr *miniredis.Miniredis, key, field string, dest any) {
	t.Helper()
	raw := mr.HGet(key, field)
	require.NotEmpty(t, raw, "%s[%s] missing", key, field)
	require.NoError(t, json.Unmarshal([]byte(raw), dest))
}

func TestNewCache_ConnectsWithRetry(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.URL = "redis://" + mr.Addr() + "/0"
	cfg.ConnectAttempts = 1

	cache, err := NewCache(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer cache.Close()

	assert.Equal(t, "gradebook:ranking:gpa", cache.Key(PrefixRanking, "gpa"))
}

func TestNewCache_FailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := DefaultConfig()
	cfg.URL = "redis://" + addr
	cfg.ConnectAttempts = 2
	cfg.DialTimeout = 200 * time.Millisecond

	retries := 0
	_, err := NewCache(context.Background(), cfg, func(int, error, time.Duration) { retries++ })
	assert.ErrorIs(t, err, ErrCacheConnection)
	assert.Equal(t, 1, retries)
}

func TestNewCache_ServerRejectionIsNotRetried(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("secret")

	cfg := DefaultConfig()
	cfg.URL = "redis://" + mr.Addr()
	cfg.ConnectAttempts = 5

	retries := 0
	_, err := NewCache(context.Background(), cfg, func(int, error, time.Duration) { retries++ })
	assert.ErrorIs(t, err, ErrCacheConnection)
	assert.Zero(t, retries)
}

func TestCache_HGet(t *testing.T) {
	mirror, mr := newTestMirror(t)
	ctx := context.Background()
	cache := mirror.cache

	var entry MirrorEntry
	assert.ErrorIs(t, cache.HGet(ctx, cache.Key("h"), "missing", &entry), ErrCacheMiss)

	mr.HSet("test:h", "bad", "{not json")
	assert.ErrorIs(t, cache.HGet(ctx, cache.Key("h"), "bad", &entry), ErrCacheSerialization)

	mr.HSet("test:h", "ok", `{"email":"a@x.com","registrations":2}`)
	require.NoError(t, cache.HGet(ctx, cache.Key("h"), "ok", &entry))
	assert.Equal(t, MirrorEntry{Email: "a@x.com", Registrations: 2}, entry)
}

func TestRankingMirror_HandlerAppliesEvents(t *testing.T) {
	mirror, mr := newTestMirror(t)
	handle := mirror.Handler(logger.Nop())

	require.NoError(t, handle(shared.NewStudentAddedEvent("a@x.com", "Alice")))
	require.NoError(t, handle(shared.NewStudentAddedEvent("b@x.com", "Bob")))
	require.NoError(t, handle(shared.NewCourseAddedEvent("Math", "T1", 3)))
	require.NoError(t, handle(registration("a@x.com", "Alice", "Math", 3.5, 3, 3.5)))
	require.NoError(t, handle(registration("a@x.com", "Alice", "Bio", 4.0, 4, 3.7857142857142856)))

	gpa, err := mr.ZScore("test:ranking:gpa", "a@x.com")
	require.NoError(t, err)
	assert.InDelta(t, 3.7857142857142856, gpa, 1e-12)

	var entry MirrorEntry
	hashJSON(t, mr, "test:ranking:info", "a@x.com", &entry)
	assert.Equal(t, "Alice", entry.Names)
	assert.Equal(t, 2, entry.Registrations)

	var c MirrorCourse
	hashJSON(t, mr, "test:course:all", "Math", &c)
	assert.Equal(t, MirrorCourse{Name: "Math", Trimester: "T1", Credits: 3}, c)

	members, err := mr.ZMembers("test:ranking:gpa")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	assert.Equal(t, time.Hour, mr.TTL("test:ranking:gpa"))
	assert.Equal(t, time.Hour, mr.TTL("test:course:all"))
}

func TestRankingMirror_EmptyKeysAreMirrored(t *testing.T) {
	mirror, mr := newTestMirror(t)
	handle := mirror.Handler(logger.Nop())

	require.NoError(t, handle(shared.NewStudentAddedEvent("", "Blank")))
	require.NoError(t, handle(shared.NewCourseAddedEvent("", "", 2)))
	require.NoError(t, handle(registration("", "Blank", "", 3, 2, 3)))

	var entry MirrorEntry
	hashJSON(t, mr, "test:ranking:info", "", &entry)
	assert.Equal(t, "Blank", entry.Names)
	assert.Equal(t, 1, entry.Registrations)
	assert.NotEmpty(t, mr.HGet("test:course:all", ""))
}

func TestRankingMirror_ReplaceRankingKeepsTieOrder(t *testing.T) {
	mirror, mr := newTestMirror(t)
	ctx := context.Background()
	handle := mirror.Handler(logger.Nop())

	require.NoError(t, handle(registration("z@x.com", "Zed", "Math", 3, 3, 3.0)))

	ranked := []shared.RankedStudent{
		{Rank: 1, Email: "top@x.com", Names: "Top", GPA: 4.0},
		{Rank: 2, Email: "z@x.com", Names: "Zed", GPA: 3.0},
		{Rank: 3, Email: "a@x.com", Names: "Ann", GPA: 3.0},
	}
	require.NoError(t, handle(shared.NewRankingCalculatedEvent(ranked)))

	order, err := mr.ZMembers("test:ranking:order")
	require.NoError(t, err)
	assert.Equal(t, []string{"top@x.com", "z@x.com", "a@x.com"}, order)

	var zed MirrorEntry
	hashJSON(t, mr, "test:ranking:info", "z@x.com", &zed)
	assert.Equal(t, 2, zed.Rank)
	assert.Equal(t, 1, zed.Registrations, "existing registration count is preserved")

	var meta RankingMeta
	raw, err := mr.Get("test:ranking:meta")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(raw), &meta))
	assert.Equal(t, 3, meta.TotalStudents)
	assert.InDelta(t, 10.0/3, meta.AverageGPA, 1e-12)

	require.NoError(t, handle(shared.NewRankingCalculatedEvent(nil)))
	assert.False(t, mr.Exists("test:ranking:order"))

	require.NoError(t, mirror.Invalidate(ctx))
	assert.False(t, mr.Exists("test:ranking:meta"))
	assert.False(t, mr.Exists("test:ranking:info"))
}

func TestRankingMirror_HandlerReportsRedisFailure(t *testing.T) {
	mirror, mr := newTestMirror(t)
	mirror.timeout = 200 * time.Millisecond
	mr.Close()

	err := mirror.Handler(logger.Nop())(shared.NewStudentAddedEvent("a@x.com", "Alice"))
	assert.Error(t, err)
}

func TestRankingMirror_BreakerDropsEventsWhileOpen(t *testing.T) {
	mirror, mr := newTestMirror(t)
	mirror.timeout = 200 * time.Millisecond
	cb := circuitbreaker.New("test", circuitbreaker.WithFailureThreshold(1), circuitbreaker.WithTimeout(time.Hour))
	handle := mirror.WithBreaker(cb).Handler(logger.Nop())

	mr.Close()
	assert.Error(t, handle(shared.NewStudentAddedEvent("a@x.com", "Alice")))
	require.Equal(t, circuitbreaker.StateOpen, cb.State())

	assert.NoError(t, handle(shared.NewStudentAddedEvent("b@x.com", "Bob")))
	assert.Equal(t, 1, cb.Counts().Rejected)
}
