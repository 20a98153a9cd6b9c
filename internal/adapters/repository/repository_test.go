package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/wardwatch/internal/adapters/bus"
	"github.com/okian/wardwatch/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

type record struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// failingKV fails the next failures Get calls and then defers to the wrapped store.
type failingKV struct {
	repository.KV
	failures int
}

var errStoreBusy = errors.New("database is locked")

func (f *failingKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failures > 0 {
		f.failures--
		return "", false, errStoreBusy
	}
	return f.KV.Get(ctx, key)
}

type recorder struct {
	topics []bus.Topic
}

func (r *recorder) Notify(_ context.Context, topic bus.Topic) {
	r.topics = append(r.topics, topic)
}

func TestKey(t *testing.T) {
	Convey("Given a module and collection", t, func() {
		So(repository.Key("ssm", "incidents"), ShouldEqual, "wardwatch.ssm.incidents")
	})
}

func testKV(kv repository.KV) {
	ctx := context.Background()

	Convey("When a missing key is read", func() {
		_, ok, err := kv.Get(ctx, "wardwatch.none")
		So(err, ShouldBeNil)
		So(ok, ShouldBeFalse)
	})

	Convey("When keys are written and overwritten", func() {
		So(kv.Set(ctx, "wardwatch.a.x", "1"), ShouldBeNil)
		So(kv.Set(ctx, "wardwatch.a.y", "2"), ShouldBeNil)
		So(kv.Set(ctx, "wardwatch.b.z", "3"), ShouldBeNil)
		So(kv.Set(ctx, "wardwatch.a.x", "4"), ShouldBeNil)

		Convey("Then the last write wins", func() {
			v, ok, err := kv.Get(ctx, "wardwatch.a.x")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "4")
		})

		Convey("Then keys are listed by prefix in order", func() {
			keys, err := kv.Keys(ctx, "wardwatch.a.")
			So(err, ShouldBeNil)
			So(keys, ShouldResemble, []string{"wardwatch.a.x", "wardwatch.a.y"})
		})
	})

	Convey("When the key is empty", func() {
		So(errors.Is(kv.Set(ctx, "", "v"), repository.ErrEmptyKey), ShouldBeTrue)
	})
}

func TestMemoryKV(t *testing.T) {
	Convey("Given an in-memory KV", t, func() {
		kv := repository.NewMemoryKV()
		testKV(kv)

		Convey("When closed", func() {
			So(kv.Close(), ShouldBeNil)
			_, _, err := kv.Get(context.Background(), "k")
			So(err, ShouldEqual, repository.ErrClosed)
		})
	})
}

func TestSQLiteKV(t *testing.T) {
	Convey("Given a file-backed SQLite KV", t, func() {
		path := filepath.Join(t.TempDir(), "nested", "wardwatch.db")
		kv, err := repository.OpenSQLite(path)
		So(err, ShouldBeNil)
		Reset(func() { _ = kv.Close() })

		testKV(kv)

		Convey("When reopened", func() {
			So(kv.Set(context.Background(), "wardwatch.persist", "yes"), ShouldBeNil)
			So(kv.Close(), ShouldBeNil)

			again, err := repository.OpenSQLite(path)
			So(err, ShouldBeNil)
			defer again.Close()

			Convey("Then data survives", func() {
				v, ok, err := again.Get(context.Background(), "wardwatch.persist")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, "yes")
			})
		})
	})

	Convey("Given an in-memory SQLite KV", t, func() {
		kv, err := repository.OpenSQLiteInMemory()
		So(err, ShouldBeNil)
		Reset(func() { _ = kv.Close() })

		testKV(kv)
	})

	Convey("Given an empty path", t, func() {
		_, err := repository.OpenSQLite("  ")
		So(err, ShouldEqual, repository.ErrEmptyPath)
	})
}

func TestCollection(t *testing.T) {
	ctx := context.Background()

	Convey("Given a collection over an empty store", t, func() {
		kv := repository.NewMemoryKV()
		rec := &recorder{}
		col := repository.NewCollection[record](kv, repository.Key("tasks", "items"), bus.TopicTasks,
			repository.WithNotifier(rec))

		Convey("When read before any write", func() {
			Convey("Then it is empty, not nil", func() {
				items := col.Read(ctx)
				So(items, ShouldNotBeNil)
				So(items, ShouldBeEmpty)
			})
		})

		Convey("When written", func() {
			So(col.Write(ctx, []record{{ID: "1", Title: "Verificare"}}), ShouldBeNil)

			Convey("Then the payload is a JSON array and the topic is published", func() {
				raw, _, _ := kv.Get(ctx, col.Key())
				So(raw, ShouldEqual, `[{"id":"1","title":"Verificare"}]`)
				So(rec.topics, ShouldResemble, []bus.Topic{bus.TopicTasks})
				So(col.Read(ctx), ShouldResemble, []record{{ID: "1", Title: "Verificare"}})
			})
		})

		Convey("When a nil slice is written", func() {
			So(col.Write(ctx, nil), ShouldBeNil)
			raw, _, _ := kv.Get(ctx, col.Key())
			So(raw, ShouldEqual, "[]")
		})

		Convey("When updated", func() {
			err := col.Update(ctx, func(items []record) ([]record, error) {
				return append(items, record{ID: "2"}), nil
			})
			So(err, ShouldBeNil)
			So(len(col.Read(ctx)), ShouldEqual, 1)
			So(len(rec.topics), ShouldEqual, 1)
		})

		Convey("When an update aborts", func() {
			boom := errors.New("invalid")
			err := col.Update(ctx, func(items []record) ([]record, error) { return nil, boom })

			Convey("Then nothing is written or published", func() {
				So(err, ShouldEqual, boom)
				_, ok, _ := kv.Get(ctx, col.Key())
				So(ok, ShouldBeFalse)
				So(rec.topics, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a corrupt payload", t, func() {
		kv := repository.NewMemoryKV()
		key := repository.Key("ssm", "incidents")
		So(kv.Set(ctx, key, `[{"id":"1",`), ShouldBeNil)
		col := repository.NewCollection[record](kv, key, bus.TopicIncidents)

		Convey("When loaded strictly", func() {
			_, err := col.Load(ctx)
			So(errors.Is(err, repository.ErrCorrupt), ShouldBeTrue)
		})

		Convey("When read softly", func() {
			items := col.Read(ctx)

			Convey("Then it is empty and the raw payload is backed up", func() {
				So(items, ShouldBeEmpty)
				backup, ok, _ := kv.Get(ctx, key+repository.CorruptSuffix)
				So(ok, ShouldBeTrue)
				So(backup, ShouldEqual, `[{"id":"1",`)
			})

			Convey("Then a later write does not touch the backup", func() {
				So(col.Write(ctx, []record{{ID: "9"}}), ShouldBeNil)
				backup, _, _ := kv.Get(ctx, key+repository.CorruptSuffix)
				So(backup, ShouldEqual, `[{"id":"1",`)
			})
		})
	})

	Convey("Given a payload of the wrong shape", t, func() {
		kv := repository.NewMemoryKV()
		So(kv.Set(ctx, "k", `{"id":"1"}`), ShouldBeNil)
		col := repository.NewCollection[record](kv, "k", bus.TopicAll)

		Convey("Then it is treated as corrupt", func() {
			_, err := col.Load(ctx)
			So(errors.Is(err, repository.ErrCorrupt), ShouldBeTrue)
		})
	})

	Convey("Given a JSON null payload", t, func() {
		kv := repository.NewMemoryKV()
		So(kv.Set(ctx, "k", `null`), ShouldBeNil)
		col := repository.NewCollection[record](kv, "k", bus.TopicAll)

		Convey("Then it loads as empty", func() {
			items, err := col.Load(ctx)
			So(err, ShouldBeNil)
			So(items, ShouldNotBeNil)
			So(items, ShouldBeEmpty)
		})
	})

	Convey("Given a store whose next read fails", t, func() {
		kv := &failingKV{KV: repository.NewMemoryKV()}
		key := repository.Key("ssm", "risks")
		col := repository.NewCollection[record](kv, key, bus.TopicRisks)
		So(col.Write(ctx, []record{{ID: "a"}, {ID: "b"}, {ID: "c"}}), ShouldBeNil)
		kv.failures = 1

		Convey("When an update runs", func() {
			called := false
			err := col.Update(ctx, func(items []record) ([]record, error) {
				called = true
				return append(items, record{ID: "d"}), nil
			})

			Convey("Then it fails without touching the stored items", func() {
				So(errors.Is(err, errStoreBusy), ShouldBeTrue)
				So(called, ShouldBeFalse)
				items, lerr := col.Load(ctx)
				So(lerr, ShouldBeNil)
				So(items, ShouldResemble, []record{{ID: "a"}, {ID: "b"}, {ID: "c"}})
				_, ok, _ := kv.Get(ctx, key+repository.CorruptSuffix)
				So(ok, ShouldBeFalse)
			})

			Convey("Then the next update succeeds", func() {
				So(col.Update(ctx, func(items []record) ([]record, error) {
					return append(items, record{ID: "d"}), nil
				}), ShouldBeNil)
				So(len(col.Read(ctx)), ShouldEqual, 4)
			})
		})
	})

	Convey("Given a corrupt payload under update", t, func() {
		kv := repository.NewMemoryKV()
		key := repository.Key("psi", "permits")
		So(kv.Set(ctx, key, `[{"id":`), ShouldBeNil)
		col := repository.NewCollection[record](kv, key, bus.TopicPermits)

		Convey("When an item is added", func() {
			err := col.Update(ctx, func(items []record) ([]record, error) {
				return append(items, record{ID: "1"}), nil
			})

			Convey("Then it starts from empty and the raw payload is backed up", func() {
				So(err, ShouldBeNil)
				So(col.Read(ctx), ShouldResemble, []record{{ID: "1"}})
				backup, ok, _ := kv.Get(ctx, key+repository.CorruptSuffix)
				So(ok, ShouldBeTrue)
				So(backup, ShouldEqual, `[{"id":`)
			})
		})
	})

	Convey("Given a write issued while an update is in progress", t, func() {
		kv := repository.NewMemoryKV()
		col := repository.NewCollection[record](kv, "k", bus.TopicAll)
		done := make(chan error, 1)
		writtenEarly := false

		err := col.Update(ctx, func(items []record) ([]record, error) {
			go func() { done <- col.Write(ctx, []record{{ID: "w"}}) }()
			select {
			case <-done:
				writtenEarly = true
			case <-time.After(50 * time.Millisecond):
			}
			return append(items, record{ID: "u"}), nil
		})

		Convey("Then the write waits for the update and lands after it", func() {
			So(err, ShouldBeNil)
			So(writtenEarly, ShouldBeFalse)
			So(<-done, ShouldBeNil)
			So(col.Read(ctx), ShouldResemble, []record{{ID: "w"}})
		})
	})
}
