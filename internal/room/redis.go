package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tOgg1/roomview/internal/logging"
)

const redisRoomsKey = "roomview:rooms"

// RedisStore keeps room history in Redis. Each room has a sequence counter, a
// sorted set of events scored by sequence, and a hash of current membership.
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

// OpenRedis connects to the server named by redisURL.
func OpenRedis(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", logging.RedactURL(redisURL), err)
	}

	return &RedisStore{
		client: client,
		logger: logging.Component("room-redis"),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func roomEventsKey(roomID string) string {
	return fmt.Sprintf("roomview:room:%s:events", roomID)
}

func roomSeqKey(roomID string) string {
	return fmt.Sprintf("roomview:room:%s:seq", roomID)
}

func roomMembersKey(roomID string) string {
	return fmt.Sprintf("roomview:room:%s:members", roomID)
}

func (s *RedisStore) CreateRoom(ctx context.Context, creator, name string) (string, error) {
	if err := ValidateUserID(creator); err != nil {
		return "", err
	}
	local, server, _ := splitID(creator, '@')
	id := "!" + uuid.NewString() + ":" + server

	info, err := json.Marshal(RoomInfo{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Creator:   creator,
		CreatedAt: s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal room: %w", err)
	}
	if err := s.client.HSet(ctx, redisRoomsKey, id, string(info)).Err(); err != nil {
		return "", fmt.Errorf("failed to store room: %w", err)
	}

	if err := s.Append(ctx, &Event{RoomID: id, Type: EventTypeCreate, Sender: creator, Body: strings.TrimSpace(name)}); err != nil {
		return "", err
	}
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
func (s *RedisStore) Rooms(ctx context.Context) ([]RoomInfo, error) {
	raw, err := s.client.HGetAll(ctx, redisRoomsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	out := make([]RoomInfo, 0, len(raw))
	for id, data := range raw {
		var info RoomInfo
		if err := json.Unmarshal([]byte(data), &info); err != nil {
			s.logger.Warn().Err(err).Str("room_id", id).Msg("skipping unreadable room")
			continue
		}
		out = append(out, info)
	}
	sortRooms(out)
	return out, nil
}

type redisEntry struct {
	Seq   int64 `json:"seq"`
	Event Event `json:"event"`
}

func (s *RedisStore) Append(ctx context.Context, ev *Event) error {
	if err := validateEvent(ev); err != nil {
		return err
	}
	exists, err := s.client.HExists(ctx, redisRoomsKey, ev.RoomID).Result()
	if err != nil {
		return fmt.Errorf("failed to look up room: %w", err)
	}
	if !exists {
		return ErrRoomNotFound
	}

	if ev.ID == "" {
		ev.ID = ulid.Make().String()
	}
	if ev.OriginServerTS == 0 {
		ev.OriginServerTS = s.now().UnixMilli()
	}
	if ev.Type == EventTypeMember {
		if ev.StateKey == "" {
			ev.StateKey = ev.Sender
		}
		if ev.PrevMember == nil {
			prev, err := s.currentMember(ctx, ev.RoomID, ev.StateKey)
			if err != nil {
				return err
			}
			ev.PrevMember = prev
		}
	}

	seq, err := s.client.Incr(ctx, roomSeqKey(ev.RoomID)).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}
	data, err := json.Marshal(redisEntry{Seq: seq, Event: *ev})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, roomEventsKey(ev.RoomID), redis.Z{Score: float64(seq), Member: string(data)})
		if ev.Type == EventTypeMember {
			member, err := json.Marshal(ev.Member)
			if err != nil {
				return err
			}
			pipe.HSet(ctx, roomMembersKey(ev.RoomID), ev.StateKey, string(member))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store event: %w", err)
	}
	return nil
}

func (s *RedisStore) currentMember(ctx context.Context, roomID, userID string) (*MemberContent, error) {
	raw, err := s.client.HGet(ctx, roomMembersKey(roomID), userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up membership: %w", err)
	}
	var content MemberContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return nil, fmt.Errorf("failed to parse membership: %w", err)
	}
	return &content, nil
}

func (s *RedisStore) Room(id string) Room {
	return &redisRoom{store: s, id: id}
}

type redisRoom struct {
	store *RedisStore
	id    string
}

func (r *redisRoom) ID() string { return r.id }

func (r *redisRoom) Messages(ctx context.Context, dir Direction, token string, limit int) (Page, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	key := roomEventsKey(r.id)

	var results []redis.Z
	var err error
	if dir == Backward {
		maxScore := "+inf"
		if token != "" {
			seq, perr := parseToken(token)
			if perr != nil {
				return Page{}, perr
			}
			maxScore = "(" + strconv.FormatInt(seq, 10)
		}
		results, err = r.store.client.ZRevRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
			Min:   "-inf",
			Max:   maxScore,
			Count: int64(limit),
		}).Result()
	} else {
		minScore := "-inf"
		if token != "" {
			seq, perr := parseToken(token)
			if perr != nil {
				return Page{}, perr
			}
			minScore = strconv.FormatInt(seq, 10)
		}
		results, err = r.store.client.ZRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
			Min:   minScore,
			Max:   "+inf",
			Count: int64(limit),
		}).Result()
	}
	if err != nil {
		return Page{}, fmt.Errorf("failed to query events: %w", err)
	}

	events := make([]Event, 0, len(results))
	seqs := make([]int64, 0, len(results))
	for _, z := range results {
		data, _ := z.Member.(string)
		var entry redisEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			r.store.logger.Warn().Err(err).Str("room_id", r.id).Msg("skipping unreadable event")
			continue
		}
		events = append(events, entry.Event)
		seqs = append(seqs, int64(z.Score))
	}

	start, end := pageTokens(dir, token, seqs)
	return Page{Start: start, End: end, Events: events}, nil
}

func (r *redisRoom) State(ctx context.Context) (*State, error) {
	raw, err := r.store.client.HGetAll(ctx, roomMembersKey(r.id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	state := NewState()
	for userID, data := range raw {
		var content MemberContent
		if err := json.Unmarshal([]byte(data), &content); err != nil {
			r.store.logger.Warn().Err(err).Str("user_id", userID).Msg("skipping unreadable member")
			continue
		}
		state.set(userID, &content)
	}
	return state, nil
}

func sortRooms(rooms []RoomInfo) {
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
}
