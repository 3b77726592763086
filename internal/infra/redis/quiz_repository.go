package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"learning-progress-service/internal/domain"
)

// QuizLoader fetches quiz content from a backing store (e.g., Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error)
}

// QuizRepository caches quiz definitions in Redis (one hash per quiz) and falls back to a
// loader on cache miss. Layout:
//
//	HSET quiz:{quizID} title {title} count {n} 0 {question JSON} ... n-1 {question JSON}
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error) {
	if def, ok := r.fromCache(ctx, quizID); ok {
		return def, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another instance filled it.
		if def, ok := r.fromCache(ctx, quizID); ok {
			return def, nil
		}

		def, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.QuizDefinition{}, err
		}
		// Cache writes are best effort; the loader stays the source of truth.
		_ = r.store(ctx, def)
		return def, nil
	})
	if err != nil {
		return domain.QuizDefinition{}, err
	}
	return result.(domain.QuizDefinition), nil
}

// Invalidate removes the cached copy of a quiz.
func (r *QuizRepository) Invalidate(ctx context.Context, quizID string) error {
	return r.client.Del(ctx, r.key(quizID)).Err()
}

func (r *QuizRepository) key(quizID string) string {
	return "quiz:" + quizID
}

func (r *QuizRepository) fromCache(ctx context.Context, quizID string) (domain.QuizDefinition, bool) {
	fields, err := r.client.HGetAll(ctx, r.key(quizID)).Result()
	if err != nil || len(fields) == 0 {
		return domain.QuizDefinition{}, false
	}
	def, err := decodeQuiz(quizID, fields)
	if err != nil {
		return domain.QuizDefinition{}, false
	}
	return def, true
}

func (r *QuizRepository) store(ctx context.Context, def domain.QuizDefinition) error {
	key := r.key(def.ID)
	values := make([]interface{}, 0, 4+2*len(def.Questions))
	values = append(values, "title", def.Title, "count", len(def.Questions))
	for i, q := range def.Questions {
		raw, err := json.Marshal(q)
		if err != nil {
			return err
		}
		values = append(values, strconv.Itoa(i), raw)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, values...)
	if ttl := r.ttlWithJitter(); ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func decodeQuiz(quizID string, fields map[string]string) (domain.QuizDefinition, error) {
	count, err := strconv.Atoi(fields["count"])
	if err != nil || count <= 0 {
		return domain.QuizDefinition{}, fmt.Errorf("cached quiz %s: bad count %q", quizID, fields["count"])
	}
	def := domain.QuizDefinition{
		ID:        quizID,
		Title:     fields["title"],
		Questions: make([]domain.Question, 0, count),
	}
	for i := 0; i < count; i++ {
		raw, ok := fields[strconv.Itoa(i)]
		if !ok {
			return domain.QuizDefinition{}, fmt.Errorf("cached quiz %s: missing question %d", quizID, i)
		}
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return domain.QuizDefinition{}, err
		}
		def.Questions = append(def.Questions, q)
	}
	return def, nil
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
