package items

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shoplist/shoplist-cli/internal/api"
	"github.com/shoplist/shoplist-cli/internal/logging"
	"github.com/shoplist/shoplist-cli/internal/output"
)

// Store is the remote item store.
type Store interface {
	List(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, draft Draft) (*Item, error)
	Update(ctx context.Context, u Update) (*Item, error)
	Delete(ctx context.Context, ref Ref) (json.RawMessage, error)
}

// OperationInfo describes a store call for observability hooks.
type OperationInfo struct {
	Operation  string // List, Create, Update, Delete
	ItemID     string
	IsMutation bool
}

// Hooks observes store operations.
type Hooks interface {
	OnOperationStart(ctx context.Context, op OperationInfo) context.Context
	OnOperationEnd(ctx context.Context, op OperationInfo, err error, duration time.Duration)
}

// Client implements Store over the JSON transport.
type Client struct {
	api    *api.Client
	now    func() time.Time
	hooks  Hooks
	logger zerolog.Logger
}

var _ Store = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClock overrides the clock used to stamp createdAt.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// WithHooks installs operation hooks.
func WithHooks(h Hooks) ClientOption {
	return func(c *Client) { c.hooks = h }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient wraps a transport client.
func NewClient(transport *api.Client, opts ...ClientOption) *Client {
	c := &Client{
		api:    transport,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns every item in server order.
func (c *Client) List(ctx context.Context) ([]Item, error) {
	var list []Item
	err := c.observe(ctx, OperationInfo{Operation: "List"}, func(ctx context.Context) error {
		resp, err := c.api.Get(ctx, "/items")
		if err != nil {
			return err
		}
		if err := resp.UnmarshalData(&list); err != nil {
			return fmt.Errorf("decode items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Item{}
	}
	return list, nil
}

// Create stamps createdAt with the current unix time and posts the draft.
func (c *Client) Create(ctx context.Context, draft Draft) (*Item, error) {
	draft.CreatedAt = c.now().Unix()

	var created Item
	err := c.observe(ctx, OperationInfo{Operation: "Create", IsMutation: true}, func(ctx context.Context) error {
		resp, err := c.api.Post(ctx, "/items", draft)
		if err != nil {
			return err
		}
		if err := resp.UnmarshalData(&created); err != nil {
			return fmt.Errorf("decode created item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update patches the item named by u.ID.
func (c *Client) Update(ctx context.Context, u Update) (*Item, error) {
	var updated Item
	op := OperationInfo{Operation: "Update", ItemID: u.ID.String(), IsMutation: true}
	err := c.observe(ctx, op, func(ctx context.Context) error {
		resp, err := c.api.Patch(ctx, itemPath(u.ID), u)
		if err != nil {
			return notFoundAsItem(err, u.ID)
		}
		if err := resp.UnmarshalData(&updated); err != nil {
			return fmt.Errorf("decode updated item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the item and returns the store's acknowledgement as-is.
func (c *Client) Delete(ctx context.Context, ref Ref) (json.RawMessage, error) {
	var ack json.RawMessage
	op := OperationInfo{Operation: "Delete", ItemID: ref.ID.String(), IsMutation: true}
	err := c.observe(ctx, op, func(ctx context.Context) error {
		resp, err := c.api.Delete(ctx, itemPath(ref.ID))
		if err != nil {
			return notFoundAsItem(err, ref.ID)
		}
		ack = resp.Data
		return nil
	})
	return ack, err
}

func (c *Client) observe(ctx context.Context, op OperationInfo, fn func(context.Context) error) error {
	ctx = logging.WithOp(ctx, op.Operation)
	if op.ItemID != "" {
		ctx = logging.WithItemID(ctx, op.ItemID)
	}
	if c.hooks != nil {
		ctx = c.hooks.OnOperationStart(ctx, op)
	}

	start := time.Now()
	err := fn(ctx)
	if c.hooks != nil {
		c.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
	}
	if err != nil {
		c.logger.Warn().Ctx(ctx).Err(err).Msg("store operation failed")
	}
	return err
}

func itemPath(id ID) string {
	return "/items/" + id.String()
}

// notFoundAsItem names the item in 404 errors instead of the raw path.
// The transport error stays reachable through errors.As and errors.Is.
func notFoundAsItem(err error, id ID) error {
	var e *output.Error
	if errors.As(err, &e) && e.Code == output.CodeNotFound {
		nf := output.ErrNotFound("Item", id.String())
		nf.Cause = err
		return nf
	}
	return err
}
