package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/pkg/circuitbreaker"
	"github.com/alem-hub/gradebook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIRROR ENTRY STRUCTURES
// ══════════════════════════════════════════════════════════════════════════════

// ErrStudentNotMirrored is returned when a student has no entry in the mirror.
var ErrStudentNotMirrored = errors.New("ranking_mirror: student not mirrored")

// MirrorEntry is the per-student record stored in the info hash.
type MirrorEntry struct {
	Email         string    `json:"email"`
	Names         string    `json:"names"`
	GPA           float64   `json:"gpa"`
	Registrations int       `json:"registrations"`
	Rank          int       `json:"rank,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MirrorCourse is the per-course record.
type MirrorCourse struct {
	Name      string  `json:"name"`
	Trimester string  `json:"trimester"`
	Credits   float64 `json:"credits"`
}

// RankingMeta describes the last mirrored ranking.
type RankingMeta struct {
	CalculatedAt  time.Time `json:"calculated_at"`
	TotalStudents int       `json:"total_students"`
	AverageGPA    float64   `json:"average_gpa"`
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING MIRROR
// ══════════════════════════════════════════════════════════════════════════════

// RankingMirror copies grade book events into Redis.
//
// Layout (all keys under the cache prefix):
//   - Sorted Set "ranking:gpa"   email -> current GPA
//   - Sorted Set "ranking:order" email -> rank of the last calculated ranking
//   - Hash       "ranking:info"  email -> MirrorEntry JSON
//   - String     "ranking:meta"  RankingMeta JSON
//   - Hash       "course:all"    name  -> MirrorCourse JSON
//
// The order set keeps the grade book's own tie order, which a GPA-scored
// set cannot express.
type RankingMirror struct {
	cache   *Cache
	ttl     time.Duration
	timeout time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

// NewRankingMirror creates a RankingMirror. ttl <= 0 uses TTLRanking.
func NewRankingMirror(cache *Cache, ttl time.Duration) *RankingMirror {
	if ttl <= 0 {
		ttl = TTLRanking
	}
	return &RankingMirror{cache: cache, ttl: ttl, timeout: 3 * time.Second}
}

// WithBreaker guards the event handler with cb. While cb is open, events are
// dropped instead of waiting on an unreachable Redis.
func (m *RankingMirror) WithBreaker(cb *circuitbreaker.CircuitBreaker) *RankingMirror {
	m.breaker = cb
	return m
}

func (m *RankingMirror) gpaKey() string     { return m.cache.Key(PrefixRanking, "gpa") }
func (m *RankingMirror) orderKey() string   { return m.cache.Key(PrefixRanking, "order") }
func (m *RankingMirror) infoKey() string    { return m.cache.Key(PrefixRanking, "info") }
func (m *RankingMirror) metaKey() string    { return m.cache.Key(PrefixRanking, "meta") }
func (m *RankingMirror) coursesKey() string { return m.cache.Key(PrefixCourse, "all") }

// ══════════════════════════════════════════════════════════════════════════════
// WRITE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// UpsertStudent updates the GPA score and info record of one student.
func (m *RankingMirror) UpsertStudent(ctx context.Context, entry MirrorEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	pipe := m.cache.Client().Pipeline()
	pipe.ZAdd(ctx, m.gpaKey(), redis.Z{Score: entry.GPA, Member: entry.Email})
	pipe.HSet(ctx, m.infoKey(), entry.Email, data)
	pipe.Expire(ctx, m.gpaKey(), m.ttl)
	pipe.Expire(ctx, m.infoKey(), m.ttl)

	_, err = pipe.Exec(ctx)
	return err
}

// UpsertCourse stores one course definition.
func (m *RankingMirror) UpsertCourse(ctx context.Context, c MirrorCourse) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	pipe := m.cache.Client().Pipeline()
	pipe.HSet(ctx, m.coursesKey(), c.Name, data)
	pipe.Expire(ctx, m.coursesKey(), m.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// ReplaceRanking atomically replaces the mirrored ranking with entries.
func (m *RankingMirror) ReplaceRanking(ctx context.Context, entries []shared.RankedStudent, at time.Time) error {
	pipe := m.cache.Client().TxPipeline()

	pipe.Del(ctx, m.orderKey())

	var totalGPA float64
	if len(entries) > 0 {
		order := make([]redis.Z, 0, len(entries))
		gpas := make([]redis.Z, 0, len(entries))
		info := make(map[string]interface{}, len(entries))

		for _, e := range entries {
			order = append(order, redis.Z{Score: float64(e.Rank), Member: e.Email})
			gpas = append(gpas, redis.Z{Score: e.GPA, Member: e.Email})
			totalGPA += e.GPA
		}

		existing, err := m.entries(ctx, emailsOf(entries))
		if err != nil {
			return err
		}
		for _, e := range entries {
			entry := existing[e.Email]
			entry.Email = e.Email
			entry.Names = e.Names
			entry.GPA = e.GPA
			entry.Rank = e.Rank
			entry.UpdatedAt = at
			data, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
			}
			info[e.Email] = data
		}

		pipe.ZAdd(ctx, m.orderKey(), order...)
		pipe.ZAdd(ctx, m.gpaKey(), gpas...)
		pipe.HSet(ctx, m.infoKey(), info)
		pipe.Expire(ctx, m.orderKey(), m.ttl)
		pipe.Expire(ctx, m.gpaKey(), m.ttl)
		pipe.Expire(ctx, m.infoKey(), m.ttl)
	}

	meta := RankingMeta{CalculatedAt: at.UTC(), TotalStudents: len(entries)}
	if len(entries) > 0 {
		meta.AverageGPA = totalGPA / float64(len(entries))
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	pipe.Set(ctx, m.metaKey(), metaData, m.ttl)

	_, err = pipe.Exec(ctx)
	return err
}

// Invalidate removes every mirrored key.
func (m *RankingMirror) Invalidate(ctx context.Context) error {
	return m.cache.Delete(ctx, m.gpaKey(), m.orderKey(), m.infoKey(), m.metaKey(), m.coursesKey())
}

// ══════════════════════════════════════════════════════════════════════════════
// LOOKUPS
// ══════════════════════════════════════════════════════════════════════════════

// entry returns the mirrored record of one student. Registrations are
// counted on top of it.
func (m *RankingMirror) entry(ctx context.Context, email string) (*MirrorEntry, error) {
	var entry MirrorEntry
	if err := m.cache.HGet(ctx, m.infoKey(), email, &entry); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrStudentNotMirrored
		}
		return nil, err
	}
	return &entry, nil
}

func (m *RankingMirror) entries(ctx context.Context, emails []string) (map[string]MirrorEntry, error) {
	out := make(map[string]MirrorEntry, len(emails))
	if len(emails) == 0 {
		return out, nil
	}

	data, err := m.cache.Client().HMGet(ctx, m.infoKey(), emails...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range data {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var entry MirrorEntry
		if err := json.Unmarshal([]byte(str), &entry); err != nil {
			continue
		}
		out[emails[i]] = entry
	}
	return out, nil
}

func emailsOf(entries []shared.RankedStudent) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Email
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// Handler returns an event handler that applies grade book events to the mirror.
// Unknown event types are ignored.
func (m *RankingMirror) Handler(log *logger.Logger) shared.EventHandler {
	log = log.With(logger.Component("ranking_mirror"))

	return func(event shared.Event) error {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		var err error
		if m.breaker != nil {
			err = m.breaker.Execute(ctx, func(ctx context.Context) error { return m.apply(ctx, event) })
		} else {
			err = m.apply(ctx, event)
		}

		switch {
		case circuitbreaker.IsRejected(err):
			log.Debug("mirror unavailable, event dropped", logger.EventType(string(event.EventType())))
			return nil
		case err != nil:
			return fmt.Errorf("ranking_mirror: %s: %w", event.EventType(), err)
		}
		log.Debug("mirrored event", logger.EventType(string(event.EventType())))
		return nil
	}
}

// apply writes one event to Redis. Unknown event types are ignored.
func (m *RankingMirror) apply(ctx context.Context, event shared.Event) error {
	switch e := event.(type) {
	case shared.StudentAddedEvent:
		return m.UpsertStudent(ctx, MirrorEntry{
			Email:     e.Email,
			Names:     e.Names,
			UpdatedAt: e.OccurredAt(),
		})
	case shared.CourseAddedEvent:
		return m.UpsertCourse(ctx, MirrorCourse{
			Name:      e.Name,
			Trimester: e.Trimester,
			Credits:   e.Credits,
		})
	case shared.RegistrationRecordedEvent:
		return m.applyRegistration(ctx, e)
	case shared.RankingCalculatedEvent:
		return m.ReplaceRanking(ctx, e.Entries, e.OccurredAt())
	default:
		return nil
	}
}

func (m *RankingMirror) applyRegistration(ctx context.Context, e shared.RegistrationRecordedEvent) error {
	entry, err := m.entry(ctx, e.Email)
	if err != nil && !errors.Is(err, ErrStudentNotMirrored) {
		return err
	}
	if entry == nil {
		entry = &MirrorEntry{Email: e.Email}
	}

	entry.Names = e.Names
	entry.GPA = e.GPA
	entry.Registrations++
	entry.UpdatedAt = e.OccurredAt()
	return m.UpsertStudent(ctx, *entry)
}
