package store

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	valkey "github.com/valkey-io/valkey-go"

	"github.com/worklens/dashgate/identity"
)

// ValkeyStore keeps the identity record in a Valkey (Redis-compatible)
// server. Deployment variant for setups where the dashboard session must
// be shared across hosts; semantics match BuntStore.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	opts   Options
}

// NewValkeyStore connects to addr, e.g. "127.0.0.1:6379". prefix
// namespaces all keys; defaults to "dashgate:".
func NewValkeyStore(addr, prefix string, opts Options) (*ValkeyStore, error) {
	cli, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = "dashgate:"
	}
	return &ValkeyStore{client: cli, prefix: prefix, opts: opts}, nil
}

// Close releases the client.
func (s *ValkeyStore) Close() { s.client.Close() }

func (s *ValkeyStore) key(k string) string { return s.prefix + k }

func (s *ValkeyStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 3*time.Second)
}

// Merge overlays rec onto the stored record; see IdentityStore.
func (s *ValkeyStore) Merge(rec identity.Record) bool {
	if rec.Empty() {
		return false
	}

	merged := identity.Record{}
	if current, ok := s.readRecord(); ok {
		merged = current
	}
	merged.MergeFrom(rec)

	jv, err := json.Marshal(merged)
	if err != nil {
		log.Printf("store: cannot serialize identity record: %v", err)
		return false
	}

	ctx, cancel := s.ctx()
	defer cancel()

	cmds := make(valkey.Commands, 0, len(fanoutFields)+6)
	cmds = append(cmds, s.client.B().Set().Key(s.key(KeyRecord)).Value(string(jv)).Build())
	if tok, ok := merged.String(identity.KeyToken); ok && tok != "" {
		cmds = append(cmds,
			s.client.B().Set().Key(s.key(KeyToken)).Value(tok).Build(),
			s.client.B().Set().Key(s.key(KeyTokenAlt)).Value(tok).Build(),
		)
	}
	for _, f := range fanoutFields {
		if v, ok := merged.String(f); ok {
			cmds = append(cmds, s.client.B().Set().Key(s.key(f)).Value(v).Build())
		}
	}
	if raw, ok := merged.String(identity.KeyUserInfoRaw); ok && raw != "" {
		cmds = append(cmds, s.client.B().Set().Key(s.key(KeyUserInfoRaw)).Value(raw).Build())
	}
	cmds = append(cmds,
		s.client.B().Set().Key(s.key(KeySessionID)).Value(uuid.Must(uuid.NewRandom()).String()).Build(),
		s.client.B().Set().Key(s.key(KeyTimestamp)).Value(strconv.FormatInt(time.Now().UnixMilli(), 10)).Build(),
	)

	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			log.Printf("store: merge failed: %v", err)
			return false
		}
	}
	return true
}

// Read returns the last merged record, or the assisted-mode fallback.
func (s *ValkeyStore) Read() (identity.Record, bool) {
	if rec, ok := s.readRecord(); ok {
		return rec, true
	}
	return s.opts.fallback()
}

func (s *ValkeyStore) readRecord() (identity.Record, bool) {
	ctx, cancel := s.ctx()
	defer cancel()

	raw, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(KeyRecord)).Build()).ToString()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			log.Printf("store: read failed: %v", err)
		}
		return nil, false
	}
	var rec identity.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		log.Printf("store: stored identity record unparsable: %v", err)
		return nil, false
	}
	return rec, true
}

// Token reads the credential slot, falling back to the legacy alias.
func (s *ValkeyStore) Token() (string, bool) {
	ctx, cancel := s.ctx()
	defer cancel()

	tok, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(KeyToken)).Build()).ToString()
	if err != nil && valkey.IsValkeyNil(err) {
		tok, err = s.client.Do(ctx, s.client.B().Get().Key(s.key(KeyTokenAlt)).Build()).ToString()
	}
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			log.Printf("store: token read failed: %v", err)
		}
		return "", false
	}
	return tok, tok != ""
}

// Clear removes the record, both credential slots, session id and
// timestamp with a single DEL.
func (s *ValkeyStore) Clear() {
	ctx, cancel := s.ctx()
	defer cancel()

	err := s.client.Do(ctx, s.client.B().Del().Key(
		s.key(KeyRecord), s.key(KeyToken), s.key(KeyTokenAlt),
		s.key(KeySessionID), s.key(KeyTimestamp),
	).Build()).Error()
	if err != nil {
		log.Printf("store: clear failed: %v", err)
	}
}

// ClearToken removes only the credential slots.
func (s *ValkeyStore) ClearToken() {
	ctx, cancel := s.ctx()
	defer cancel()

	err := s.client.Do(ctx, s.client.B().Del().Key(s.key(KeyToken), s.key(KeyTokenAlt)).Build()).Error()
	if err != nil {
		log.Printf("store: token clear failed: %v", err)
	}
}
