package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Jayr222/appointment-systemv2-sub002/models"
)

// DefaultDraftTTL is the freshness window for an interrupted booking form.
const DefaultDraftTTL = 24 * time.Hour

// DraftStore persists one in-progress booking form per patient. It is a
// bounded cache with an explicit expiry stamp, never ambient storage: Load
// re-checks the stamp even though Redis also expires the key.
type DraftStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewDraftStore(client *redis.Client) *DraftStore {
	return &DraftStore{Client: client, TTL: DefaultDraftTTL}
}

func draftKey(patientID string) string {
	return "booking:draft:" + patientID
}

func (s *DraftStore) Save(ctx context.Context, patientID string, draft models.BookingDraft) error {
	draft.SavedAt = time.Now()
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal booking draft: %w", err)
	}
	if err := s.Client.Set(ctx, draftKey(patientID), payload, s.TTL).Err(); err != nil {
		return fmt.Errorf("cache booking draft: %w", err)
	}
	return nil
}

// Load returns the patient's draft, or nil when none exists or the stored
// one is stale.
func (s *DraftStore) Load(ctx context.Context, patientID string) (*models.BookingDraft, error) {
	payload, err := s.Client.Get(ctx, draftKey(patientID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load booking draft: %w", err)
	}

	var draft models.BookingDraft
	if err := json.Unmarshal([]byte(payload), &draft); err != nil {
		return nil, fmt.Errorf("parse booking draft: %w", err)
	}
	if !draft.Fresh(time.Now(), s.TTL) {
		_ = s.Client.Del(ctx, draftKey(patientID)).Err()
		return nil, nil
	}
	return &draft, nil
}

func (s *DraftStore) Clear(ctx context.Context, patientID string) error {
	if err := s.Client.Del(ctx, draftKey(patientID)).Err(); err != nil {
		return fmt.Errorf("clear booking draft: %w", err)
	}
	return nil
}
