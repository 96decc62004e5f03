package matching

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	criteria := Criteria{PatientID: "p1", RecommendedSpecialty: SpecialtyOrthopedic}
	matches := []Match{{TherapistID: "t1", TherapistName: "Dana", MatchScore: 72}}

	_, ok := cache.Get(context.Background(), criteria, 5)
	assert.False(t, ok)

	cache.Set(context.Background(), criteria, 5, matches)

	got, ok := cache.Get(context.Background(), criteria, 5)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].TherapistID)
	assert.Equal(t, 72.0, got[0].MatchScore)
}

func TestCacheKeyIncludesCriteriaAndLimit(t *testing.T) {
	cache, _ := newTestCache(t)
	criteria := Criteria{PatientID: "p1", RecommendedSpecialty: SpecialtyOrthopedic}
	cache.Set(context.Background(), criteria, 5, []Match{{TherapistID: "t1"}})

	// Different limit misses.
	_, ok := cache.Get(context.Background(), criteria, 3)
	assert.False(t, ok)

	// Different criteria misses.
	other := criteria
	other.RecommendedSpecialty = SpecialtyGeriatric
	_, ok = cache.Get(context.Background(), other, 5)
	assert.False(t, ok)
}

func TestCacheEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	criteria := Criteria{PatientID: "p1"}
	cache.Set(context.Background(), criteria, 5, []Match{{TherapistID: "t1"}})

	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(context.Background(), criteria, 5)
	assert.False(t, ok)
}

func TestCacheNilSafe(t *testing.T) {
	var cache *Cache
	criteria := Criteria{PatientID: "p1"}

	cache.Set(context.Background(), criteria, 5, []Match{{TherapistID: "t1"}})
	_, ok := cache.Get(context.Background(), criteria, 5)
	assert.False(t, ok)

	assert.Nil(t, NewCache(nil, time.Minute))
}
