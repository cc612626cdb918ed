package room

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/tOgg1/roomview/internal/logging"
)

// SQLiteConfig configures a SQLiteStore.
type SQLiteConfig struct {
	// Path is the database file. Parent directories are created.
	Path string

	// BusyTimeoutMs is how long to wait for a locked database.
	BusyTimeoutMs int

	// Now overrides the clock used for timestamps.
	Now func() time.Time
}

// RoomInfo describes a stored room.
type RoomInfo struct {
	ID        string
	Name      string
	Creator   string
	CreatedAt time.Time
}

// SQLiteStore keeps room history in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (and if needed creates) the database at cfg.Path.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig) (*SQLiteStore, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, fmt.Errorf("database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	busy := cfg.BusyTimeoutMs
	if busy <= 0 {
		busy = 5000
	}
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)", path, busy)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open room database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to room database: %w", err)
	}

	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	store := &SQLiteStore{
		db:     db,
		logger: logging.Component("room-sqlite"),
		now:    now,
	}
	if err := store.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			creator TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS room_events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			room_id TEXT NOT NULL REFERENCES rooms(id),
			type TEXT NOT NULL,
			sender TEXT NOT NULL,
			state_key TEXT NOT NULL DEFAULT '',
			origin_server_ts INTEGER NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			member_json TEXT,
			prev_member_json TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS room_events_room_seq_idx ON room_events(room_id, seq)`,
		`CREATE INDEX IF NOT EXISTS room_events_member_idx ON room_events(room_id, type, state_key, seq)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize room schema: %w", err)
		}
	}
	return nil
}

// CreateRoom stores a new room together with its creation event and the
// creator's join.
func (s *SQLiteStore) CreateRoom(ctx context.Context, creator, name string) (string, error) {
	if err := ValidateUserID(creator); err != nil {
		return "", err
	}
	_, server, _ := splitID(creator, '@')
	id := "!" + uuid.NewString() + ":" + server
	now := s.now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, name, creator, created_at) VALUES (?, ?, ?, ?)
	`, id, strings.TrimSpace(name), creator, now.Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("failed to insert room: %w", err)
	}

	create := &Event{RoomID: id, Type: EventTypeCreate, Sender: creator, Body: strings.TrimSpace(name)}
	if err := s.Append(ctx, create); err != nil {
		return "", err
	}
	local, _, _ := splitID(creator, '@')
	join := &Event{
		RoomID: id,
		Type:   EventTypeMember,
		Sender: creator,
		Member: &MemberContent{Membership: MembershipJoin, DisplayName: local},
	}
	if err := s.Append(ctx, join); err != nil {
		return "", err
	}

	s.logger.Info().Str("room_id", id).Str("creator", creator).Msg("room created")
	return id, nil
}

// Rooms lists stored rooms, oldest first.
func (s *SQLiteStore) Rooms(ctx context.Context) ([]RoomInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, creator, created_at FROM rooms ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var out []RoomInfo
	for rows.Next() {
		var info RoomInfo
		var createdAt string
		if err := rows.Scan(&info.ID, &info.Name, &info.Creator, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			info.CreatedAt = t
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rooms: %w", err)
	}
	return out, nil
}

// Append stores ev at the live edge of its room. Missing ids and timestamps
// are filled in, and membership events get their previous content recorded
// so clients can rewind state.
func (s *SQLiteStore) Append(ctx context.Context, ev *Event) error {
	if err := validateEvent(ev); err != nil {
		return err
	}
	if ev.ID == "" {
		ev.ID = ulid.Make().String()
	}
	if ev.OriginServerTS == 0 {
		ev.OriginServerTS = s.now().UnixMilli()
	}
	if ev.Type == EventTypeMember && ev.StateKey == "" {
		ev.StateKey = ev.Sender
	}

	return withRetry(ctx, defaultRetryAttempts, defaultRetryBackoff, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms WHERE id = ?`, ev.RoomID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to look up room: %w", err)
		}
		if exists == 0 {
			return ErrRoomNotFound
		}

		if ev.Type == EventTypeMember && ev.PrevMember == nil {
			prev, err := latestMember(ctx, tx, ev.RoomID, ev.StateKey)
			if err != nil {
				return err
			}
			ev.PrevMember = prev
		}

		memberJSON, err := marshalMember(ev.Member)
		if err != nil {
			return err
		}
		prevJSON, err := marshalMember(ev.PrevMember)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO room_events (
				id, room_id, type, sender, state_key, origin_server_ts, body, member_json, prev_member_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, ev.ID, ev.RoomID, ev.Type, ev.Sender, ev.StateKey, ev.OriginServerTS, ev.Body, memberJSON, prevJSON)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
		return tx.Commit()
	})
}

// Room returns a handle serving one room's history.
func (s *SQLiteStore) Room(id string) Room {
	return &sqliteRoom{store: s, id: id}
}

type sqliteRoom struct {
	store *SQLiteStore
	id    string
}

func (r *sqliteRoom) ID() string { return r.id }

func (r *sqliteRoom) Messages(ctx context.Context, dir Direction, token string, limit int) (Page, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	query := `SELECT seq, id, room_id, type, sender, state_key, origin_server_ts, body, member_json, prev_member_json
		FROM room_events WHERE room_id = ?`
	args := []any{r.id}
	if token != "" {
		seq, err := parseToken(token)
		if err != nil {
			return Page{}, err
		}
		if dir == Backward {
			query += ` AND seq < ?`
		} else {
			query += ` AND seq >= ?`
		}
		args = append(args, seq)
	}
	if dir == Backward {
		query += ` ORDER BY seq DESC LIMIT ?`
	} else {
		query += ` ORDER BY seq ASC LIMIT ?`
	}
	args = append(args, limit)

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Page{}, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	var seqs []int64
	for rows.Next() {
		ev, seq, err := r.store.scanEvent(rows)
		if err != nil {
			return Page{}, err
		}
		events = append(events, ev)
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("error iterating events: %w", err)
	}

	start, end := pageTokens(dir, token, seqs)
	return Page{Start: start, End: end, Events: events}, nil
}

func (r *sqliteRoom) State(ctx context.Context) (*State, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT seq, id, room_id, type, sender, state_key, origin_server_ts, body, member_json, prev_member_json
		FROM room_events WHERE room_id = ? AND type = ? ORDER BY seq
	`, r.id, EventTypeMember)
	if err != nil {
		return nil, fmt.Errorf("failed to query membership: %w", err)
	}
	defer rows.Close()

	state := NewState()
	for rows.Next() {
		ev, _, err := r.store.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		state.Apply(ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership: %w", err)
	}
	return state, nil
}

func (s *SQLiteStore) scanEvent(rows *sql.Rows) (Event, int64, error) {
	var ev Event
	var seq int64
	var memberJSON, prevJSON sql.NullString
	if err := rows.Scan(
		&seq,
		&ev.ID,
		&ev.RoomID,
		&ev.Type,
		&ev.Sender,
		&ev.StateKey,
		&ev.OriginServerTS,
		&ev.Body,
		&memberJSON,
		&prevJSON,
	); err != nil {
		return Event{}, 0, fmt.Errorf("failed to scan event: %w", err)
	}
	ev.Member = s.unmarshalMember(ev.ID, memberJSON)
	ev.PrevMember = s.unmarshalMember(ev.ID, prevJSON)
	return ev, seq, nil
}

func (s *SQLiteStore) unmarshalMember(eventID string, raw sql.NullString) *MemberContent {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var content MemberContent
	if err := json.Unmarshal([]byte(raw.String), &content); err != nil {
		s.logger.Warn().Err(err).Str("event_id", eventID).Msg("failed to parse member content")
		return nil
	}
	return &content
}

func latestMember(ctx context.Context, tx *sql.Tx, roomID, userID string) (*MemberContent, error) {
	var raw sql.NullString
	err := tx.QueryRowContext(ctx, `
		SELECT member_json FROM room_events
		WHERE room_id = ? AND type = ? AND state_key = ?
		ORDER BY seq DESC LIMIT 1
	`, roomID, EventTypeMember, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up membership: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var content MemberContent
	if err := json.Unmarshal([]byte(raw.String), &content); err != nil {
		return nil, fmt.Errorf("failed to parse membership: %w", err)
	}
	return &content, nil
}

func marshalMember(content *MemberContent) (*string, error) {
	if content == nil {
		return nil, nil
	}
	data, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal member content: %w", err)
	}
	s := string(data)
	return &s, nil
}

func validateEvent(ev *Event) error {
	if ev == nil {
		return ErrInvalidEvent
	}
	if strings.TrimSpace(ev.RoomID) == "" || strings.TrimSpace(ev.Type) == "" {
		return fmt.Errorf("%w: room id and type are required", ErrInvalidEvent)
	}
	if err := ValidateUserID(ev.Sender); err != nil {
		return fmt.Errorf("%w: sender: %v", ErrInvalidEvent, err)
	}
	if ev.Type == EventTypeMember && ev.Member == nil {
		return fmt.Errorf("%w: membership content is required", ErrInvalidEvent)
	}
	return nil
}
