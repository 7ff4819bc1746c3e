package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

// memoryUserRepo keeps documents as BSON maps so partial updates merge at the
// leaf exactly like $set and $unset do in the database.
type memoryUserRepo struct {
	mu   sync.RWMutex
	docs map[string]bson.M
}

// NewMemoryUserRepo creates an in-process users store
func NewMemoryUserRepo() UserRepo {
	return &memoryUserRepo{docs: make(map[string]bson.M)}
}

func (r *memoryUserRepo) Get(ctx context.Context, uid string) (*model.UserDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	raw, ok := r.docs[uid]
	var data []byte
	var err error
	if ok {
		data, err = bson.Marshal(raw)
	}
	r.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var doc model.UserDocument
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *memoryUserRepo) Set(ctx context.Context, doc *model.UserDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	raw, err := toM(doc)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.docs[doc.ID] = raw
	r.mu.Unlock()
	return nil
}

func (r *memoryUserRepo) Update(ctx context.Context, uid string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	values := make(map[string]interface{}, len(fields))
	for path, v := range fields {
		norm, err := normalize(v)
		if err != nil {
			return err
		}
		values[path] = norm
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[uid]
	if !ok {
		doc = bson.M{"_id": uid, "createdAt": time.Now()}
		r.docs[uid] = doc
	}
	for path, v := range values {
		setPath(doc, strings.Split(path, "."), v)
	}
	return nil
}

func (r *memoryUserRepo) Unset(ctx context.Context, uid string, paths ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[uid]
	if !ok {
		return nil
	}
	for _, p := range paths {
		unsetPath(doc, strings.Split(p, "."))
	}
	return nil
}

func (r *memoryUserRepo) all(ctx context.Context) ([]*model.UserDocument, error) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.docs))
	for id := range r.docs {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)

	docs := make([]*model.UserDocument, 0, len(ids))
	for _, id := range ids {
		doc, err := r.Get(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *memoryUserRepo) ListStudents(ctx context.Context) ([]*model.UserDocument, error) {
	docs, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	var students []*model.UserDocument
	for _, d := range docs {
		if d.Role == "" || d.Role == model.RoleStudent {
			students = append(students, d)
		}
	}
	sort.SliceStable(students, func(i, j int) bool {
		return lastTest(students[i]).After(lastTest(students[j]))
	})
	return students, nil
}

func lastTest(d *model.UserDocument) time.Time {
	if d.LastTestDate == nil {
		return time.Time{}
	}
	return *d.LastTestDate
}

func (r *memoryUserRepo) CountByLevel(ctx context.Context, cat model.Category) (map[model.Level]int, error) {
	docs, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[model.Level]int, len(model.Levels))
	for _, l := range model.Levels {
		counts[l] = 0
	}
	for _, d := range docs {
		cs, ok := d.TestResults[cat]
		if !ok {
			continue
		}
		if level, err := model.ParseLevel(string(cs.Level)); err == nil {
			counts[level]++
		}
	}
	return counts, nil
}

func (r *memoryUserRepo) CountVeracityFlagged(ctx context.Context, threshold int) (int, error) {
	docs, err := r.all(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range docs {
		if d.VeracityScore != nil && *d.VeracityScore >= threshold {
			n++
		}
	}
	return n, nil
}

func (r *memoryUserRepo) CountTested(ctx context.Context) (int, error) {
	docs, err := r.all(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range docs {
		if d.Answers != nil {
			n++
		}
	}
	return n, nil
}

func toM(v interface{}) (bson.M, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// normalize converts a value to the shape it would have after a database round trip
func normalize(v interface{}) (interface{}, error) {
	m, err := toM(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	return m["v"], nil
}

func setPath(doc bson.M, path []string, v interface{}) {
	cur := doc
	for _, key := range path[:len(path)-1] {
		next, ok := cur[key].(bson.M)
		if !ok {
			next = bson.M{}
			cur[key] = next
		}
		cur = next
	}
	cur[path[len(path)-1]] = v
}

func unsetPath(doc bson.M, path []string) {
	cur := doc
	for _, key := range path[:len(path)-1] {
		next, ok := cur[key].(bson.M)
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, path[len(path)-1])
}
