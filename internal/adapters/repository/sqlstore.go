package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	model "github.com/okian/podclips/internal/domain/model"
	scoring "github.com/okian/podclips/internal/domain/scoring"
	types "github.com/okian/podclips/internal/domain/types"
	"github.com/okian/podclips/pkg/logger"
	"github.com/okian/podclips/pkg/metrics"
)

// Store drivers accepted by OpenSQLStore.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultCASRetries   = 16
	defaultMaxOpenConns = 10
)

//go:embed schema.sql
var schema string

const clipColumns = `id, title, description, start_time_seconds, end_time_seconds, transcript_text, tags,
	best_votes, worst_votes, vote_score, controversy_score, is_featured, created_at, episode_title, podcast_name`

// SQLStore is a Store and VoteLog on database/sql. It runs on sqlite
// (modernc.org/sqlite) or Postgres (pgx). Votes use an optimistic
// compare-and-swap on the counters instead of row locks.
type SQLStore struct {
	db           *sql.DB
	driver       string
	maxOpenConns int
	casRetries   int
	log          logger.Logger
}

// OpenSQLStore opens the database, verifies connectivity and creates the schema.
// An empty sqlite dsn opens a private in-memory database.
func OpenSQLStore(ctx context.Context, driver, dsn string, opts ...SQLOption) (*SQLStore, error) {
	s := &SQLStore{
		driver:       driver,
		maxOpenConns: defaultMaxOpenConns,
		casRetries:   defaultCASRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("sqlstore")
	}

	var driverName string
	switch driver {
	case DriverSQLite:
		driverName = "sqlite"
		if dsn == "" {
			dsn = ":memory:"
		}
	case DriverPostgres:
		driverName = "pgx"
		if dsn == "" {
			return nil, errors.New("postgres dsn is required")
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one connection: an in-memory database lives and dies with it
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(s.maxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s.db = db

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.log.Info(ctx, "sql store ready", logger.String("driver", driver))
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $N for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// Insert implements Store.Insert in a single transaction.
func (s *SQLStore) Insert(ctx context.Context, clips ...model.Clip) error {
	defer observe("insert", time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM clips`).Scan(&seq); err != nil {
		return fmt.Errorf("read clip sequence: %w", err)
	}

	seen := make(map[string]struct{}, len(clips))
	for _, c := range clips {
		if reason := c.Validate(); reason != "" {
			return fmt.Errorf("%w: %q: %s", ErrInvalidClip, c.ID, reason)
		}
		if _, ok := seen[c.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateClip, c.ID)
		}
		seen[c.ID] = struct{}{}

		var one int
		err := tx.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM clips WHERE id = ?`), c.ID).Scan(&one)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %q", ErrDuplicateClip, c.ID)
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check clip %q: %w", c.ID, err)
		}

		scoring.Recompute(&c)
		tags, err := encodeTags(c.Tags)
		if err != nil {
			return err
		}
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		seq++
		_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO clips (seq, `+clipColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			seq, c.ID, c.Title, nullString(c.Description), c.StartSeconds, c.EndSeconds,
			nullString(c.TranscriptText), tags, c.BestVotes, c.WorstVotes, c.VoteScore,
			c.ControversyScore, c.IsFeatured, createdAt.UTC(), c.EpisodeTitle, c.PodcastName,
		)
		if err != nil {
			return fmt.Errorf("insert clip %q: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// Get implements Store.Get.
func (s *SQLStore) Get(ctx context.Context, id string) (model.Clip, error) {
	defer observe("get", time.Now())
	return s.get(ctx, id)
}

func (s *SQLStore) get(ctx context.Context, id string) (model.Clip, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+clipColumns+` FROM clips WHERE id = ?`), id)
	c, err := scanClip(row)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Clip{}, ErrNotFound
	}
	if err != nil {
		return model.Clip{}, fmt.Errorf("get clip %q: %w", id, err)
	}
	return c, nil
}

// List implements Store.List.
func (s *SQLStore) List(ctx context.Context) ([]model.Clip, error) {
	defer observe("list", time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT `+clipColumns+` FROM clips ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	defer rows.Close()

	clips := []model.Clip{}
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		clips = append(clips, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	return clips, nil
}

// ApplyVote implements Store.ApplyVote. The counters read are part of the
// UPDATE predicate; a concurrent writer makes it match no row and the vote
// is retried on fresh counters.
func (s *SQLStore) ApplyVote(ctx context.Context, id string, vt model.VoteType) (model.Clip, error) {
	defer observe("apply_vote", time.Now())

	for attempt := range s.casRetries {
		c, err := s.get(ctx, id)
		if err != nil {
			return model.Clip{}, err
		}
		oldBest, oldWorst := c.BestVotes, c.WorstVotes
		if !scoring.Apply(&c, vt) {
			return c, nil
		}

		res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE clips
			SET best_votes = ?, worst_votes = ?, vote_score = ?, controversy_score = ?
			WHERE id = ? AND best_votes = ? AND worst_votes = ?`),
			c.BestVotes, c.WorstVotes, c.VoteScore, c.ControversyScore, id, oldBest, oldWorst,
		)
		if err != nil {
			return model.Clip{}, fmt.Errorf("update clip %q: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return model.Clip{}, fmt.Errorf("update clip %q: %w", id, err)
		}
		if n == 1 {
			return c, nil
		}

		metrics.RecordVoteConflict()
		if err := backoff(ctx, attempt); err != nil {
			return model.Clip{}, err
		}
	}

	s.log.Warn(ctx, "vote retries exhausted",
		logger.String("clip_id", id),
		logger.Int("attempts", s.casRetries),
	)
	metrics.RecordErrorByComponent("repository", "conflict")
	return model.Clip{}, fmt.Errorf("%w: clip %q after %d attempts", ErrConflict, id, s.casRetries)
}

func backoff(ctx context.Context, attempt int) error {
	d := rand.N(time.Duration(attempt+1) * time.Millisecond)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Stats implements Store.Stats.
func (s *SQLStore) Stats(ctx context.Context) (types.Stats, error) {
	defer observe("stats", time.Now())

	var st types.Stats
	err := s.db.QueryRowContext(ctx, `SELECT
		COUNT(*),
		CAST(COALESCE(SUM(best_votes + worst_votes), 0) AS BIGINT),
		CAST(COALESCE(SUM(CASE WHEN is_featured THEN 1 ELSE 0 END), 0) AS BIGINT)
		FROM clips`).Scan(&st.TotalClips, &st.TotalVotes, &st.FeaturedCount)
	if err != nil {
		return types.Stats{}, fmt.Errorf("clip stats: %w", err)
	}
	return st, nil
}

// Count implements Store.Count.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clips`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count clips: %w", err)
	}
	return n, nil
}

// Record implements VoteLog.Record on the clip_votes table.
func (s *SQLStore) Record(ctx context.Context, ev model.VoteEvent) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO clip_votes (id, clip_id, vote_type, voter, created_at_ms)
		VALUES (?, ?, ?, ?, ?)`),
		ev.ID, ev.ClipID, string(ev.VoteType), model.NormalizeVoter(ev.Voter), ev.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record vote %q: %w", ev.ID, err)
	}
	return nil
}

// ActiveVoters implements VoteLog.ActiveVoters.
func (s *SQLStore) ActiveVoters(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(DISTINCT voter) FROM clip_votes WHERE created_at_ms >= ?`),
		since.UnixMilli(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active voters: %w", err)
	}
	return n, nil
}

// Recorded implements VoteLog.Recorded.
func (s *SQLStore) Recorded(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clip_votes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClip(row rowScanner) (model.Clip, error) {
	var (
		c          model.Clip
		desc       sql.NullString
		transcript sql.NullString
		tags       string
		createdAt  timeValue
	)
	err := row.Scan(&c.ID, &c.Title, &desc, &c.StartSeconds, &c.EndSeconds, &transcript, &tags,
		&c.BestVotes, &c.WorstVotes, &c.VoteScore, &c.ControversyScore, &c.IsFeatured, &createdAt,
		&c.EpisodeTitle, &c.PodcastName)
	if err != nil {
		return model.Clip{}, err
	}
	if desc.Valid {
		c.Description = model.StringPtr(desc.String)
	}
	if transcript.Valid {
		c.TranscriptText = model.StringPtr(transcript.String)
	}
	if c.Tags, err = decodeTags(tags); err != nil {
		return model.Clip{}, err
	}
	c.CreatedAt = createdAt.t
	return c, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(raw), nil
}

func decodeTags(raw string) ([]string, error) {
	tags := []string{}
	if strings.TrimSpace(raw) == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// timeValue scans a timestamp column whatever the driver hands back.
type timeValue struct {
	t time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

func (v *timeValue) Scan(src any) error {
	switch x := src.(type) {
	case time.Time:
		v.t = x.UTC()
		return nil
	case string:
		return v.parse(x)
	case []byte:
		return v.parse(string(x))
	case int64:
		v.t = time.UnixMilli(x).UTC()
		return nil
	case nil:
		return errors.New("timestamp is null")
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (v *timeValue) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			v.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}
