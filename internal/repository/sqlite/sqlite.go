package sqlite

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/internal/db"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UserRepo = (*SQLiteRepo)(nil)
var _ repository.TunnelRepo = (*SQLiteRepo)(nil)
var _ repository.SensorRepo = (*SQLiteRepo)(nil)
var _ repository.ClosureRequestRepo = (*SQLiteRepo)(nil)
var _ repository.OperationsLogRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// marshalJSON renders a payload column. Nil payloads are stored as NULL.
func marshalJSON(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func unmarshalMap(s *string) (map[string]any, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(*s), &m); err != nil {
		return nil, err
	}
	return m, nil
}
