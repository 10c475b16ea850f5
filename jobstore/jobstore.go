// Package jobstore persists one summary document per resizer entry-point
// invocation to MongoDB, for historical analysis across CI runs
// (SPEC_FULL.md §4 A6). Writes run on a small fixed worker pool, the same
// shape netlist/mongo.go uses for its own bulk inserts.
package jobstore

import (
	"log"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// MaxMgoThreads mirrors netlist/mongo.go's fixed worker-pool size.
const MaxMgoThreads = 8

const dbName = "sart"
const runCollection = "resize_runs"

// Run is one run-history document (SPEC_FULL.md §6): entry_point's
// Counters snapshot plus timing, keyed by a per-call xid so concurrent
// CI runs never collide on insert.
type Run struct {
	RunID           string    `bson:"run_id"`
	EntryPoint      string    `bson:"entry_point"`
	StartedAt       time.Time `bson:"started_at"`
	DurationMs      int64     `bson:"duration_ms"`
	InsertedBuffers int       `bson:"inserted_buffers"`
	ResizeCount     int       `bson:"resize_count"`
	DesignArea      float64   `bson:"design_area"`
	Warnings        []string  `bson:"warnings"`
}

// Store is a connected jobstore, Close'd once at process exit.
type Store struct {
	session  *mgo.Session
	jobs     chan Run
	wg       sync.WaitGroup
	closeOne sync.Once
}

// Open dials server and starts the insert worker pool. An empty server
// disables jobstore entirely (SPEC_FULL.md §6: "jobstore disabled if
// empty") by returning a nil *Store; every method on a nil *Store is a
// no-op, so callers never need a separate enabled check.
func Open(server string) (*Store, error) {
	if server == "" {
		return nil, nil
	}

	session, err := mgo.Dial(server)
	if err != nil {
		return nil, err
	}
	session.SetSafe(&mgo.Safe{})

	s := &Store{session: session, jobs: make(chan Run, 100)}
	for i := 0; i < MaxMgoThreads; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	atexit.Register(s.Close)
	return s, nil
}

func (s *Store) worker() {
	defer s.wg.Done()
	sess := s.session.Copy()
	defer sess.Close()

	c := sess.DB(dbName).C(runCollection)
	for run := range s.jobs {
		if err := c.Insert(bson.M{
			"run_id":           run.RunID,
			"entry_point":      run.EntryPoint,
			"started_at":       run.StartedAt,
			"duration_ms":      run.DurationMs,
			"inserted_buffers": run.InsertedBuffers,
			"resize_count":     run.ResizeCount,
			"design_area":      run.DesignArea,
			"warnings":         run.Warnings,
		}); err != nil {
			log.Printf("jobstore: insert failed: %v", err)
		}
	}
}

// Record enqueues a run document with a freshly minted xid as its RunID;
// started is the time the entry point began, and DurationMs is measured
// from it to the Record call.
func (s *Store) Record(entryPoint string, started time.Time, inserted, resizeCount int, area float64, warnings []string) {
	if s == nil {
		return
	}
	s.jobs <- Run{
		RunID:           xid.New().String(),
		EntryPoint:      entryPoint,
		StartedAt:       started,
		DurationMs:      time.Since(started).Milliseconds(),
		InsertedBuffers: inserted,
		ResizeCount:     resizeCount,
		DesignArea:      area,
		Warnings:        warnings,
	}
}

// Close drains the insert queue and waits for every worker to finish,
// matching netlist/mongo.go's DoneMgo/WaitMgo pair in one call so both a
// normal return and an atexit-triggered exit flush pending writes.
func (s *Store) Close() {
	if s == nil {
		return
	}
	s.closeOne.Do(func() {
		close(s.jobs)
		s.wg.Wait()
		s.session.Close()
	})
}
