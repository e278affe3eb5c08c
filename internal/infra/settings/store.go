// Package settings persists operator-configurable generation settings in the
// app_settings table: the external API credential and the inter-request
// delay.
package settings

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"scenesmith/internal/infra"
	"scenesmith/internal/sqlinline"
)

const (
	KeyAPIKey       = "api_key"
	KeyRequestDelay = "generation_delay_ms"
)

type Store struct {
	sql infra.SQLExecutor

	// defaults applied when the table has no override
	envAPIKey    string
	defaultDelay time.Duration
}

func NewStore(sql infra.SQLExecutor, envAPIKey string, defaultDelay time.Duration) *Store {
	if defaultDelay < 0 {
		defaultDelay = 0
	}
	return &Store{sql: sql, envAPIKey: strings.TrimSpace(envAPIKey), defaultDelay: defaultDelay}
}

// APIKey returns the stored credential, preferring the environment value when
// set. An empty return means no credential is configured.
func (s *Store) APIKey(ctx context.Context) (string, error) {
	if s.envAPIKey != "" {
		return s.envAPIKey, nil
	}
	return s.value(ctx, KeyAPIKey)
}

func (s *Store) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("settings: api key is required")
	}
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertSetting, KeyAPIKey, key)
	return err
}

// RequestDelay returns the inter-request pause between generation calls. A
// stored non-negative millisecond value overrides the configured default;
// malformed or negative values fall back to it.
func (s *Store) RequestDelay(ctx context.Context) (time.Duration, error) {
	raw, err := s.value(ctx, KeyRequestDelay)
	if err != nil {
		return s.defaultDelay, err
	}
	if raw == "" {
		return s.defaultDelay, nil
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		return s.defaultDelay, nil
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func (s *Store) SetRequestDelay(ctx context.Context, delay time.Duration) error {
	if delay < 0 {
		return errors.New("settings: delay must not be negative")
	}
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertSetting, KeyRequestDelay, strconv.FormatInt(delay.Milliseconds(), 10))
	return err
}

func (s *Store) value(ctx context.Context, key string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectSetting, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(value), nil
}
