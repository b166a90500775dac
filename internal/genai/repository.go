package genai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medication-adherence/internal/platform/store"
)

type Repository interface {
	// History returns the stored messages, or none for an unknown id.
	History(ctx context.Context, conversationID string) ([]Message, error)
	Append(ctx context.Context, conversationID string, msgs ...Message) error
	Delete(ctx context.Context, conversationID string) error
}

type storeRepo struct {
	st    store.Store
	table string
}

func NewRepository(st store.Store, table string) Repository {
	return &storeRepo{st: st, table: table}
}

func (r *storeRepo) load(ctx context.Context, id string) (Conversation, error) {
	var c Conversation
	err := r.st.Get(ctx, r.table, id, &c)
	if errors.Is(err, store.ErrNotFound) {
		return Conversation{ConversationID: id, Messages: []Message{}}, nil
	}
	if err != nil {
		return c, fmt.Errorf("get conversation %s: %w", id, err)
	}
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	return c, nil
}

func (r *storeRepo) History(ctx context.Context, id string) ([]Message, error) {
	c, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.Messages, nil
}

// Append is read-modify-write; concurrent appends to one conversation can
// lose messages.
func (r *storeRepo) Append(ctx context.Context, id string, msgs ...Message) error {
	c, err := r.load(ctx, id)
	if err != nil {
		return err
	}
	c.ConversationID = id
	c.Messages = append(c.Messages, msgs...)
	c.UpdatedAt = time.Now().UTC()
	if err := r.st.Put(ctx, r.table, id, c); err != nil {
		return fmt.Errorf("save conversation %s: %w", id, err)
	}
	return nil
}

func (r *storeRepo) Delete(ctx context.Context, id string) error {
	if err := r.st.Delete(ctx, r.table, id); err != nil {
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	return nil
}
