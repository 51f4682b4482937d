// Package command maps chat commands onto the points ledger and formats
// their replies.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xraph/housecup"
	"github.com/xraph/housecup/leaderboard"
	"github.com/xraph/housecup/points"
)

// DefaultTop is how many members the standings show.
const DefaultTop = 10

// ErrNotInHouse is returned when points target a member without a house and
// the handler requires one.
var ErrNotInHouse = errors.New("command: member is not in a house")

// Member is the target of a command, as seen by the chat platform.
type Member struct {
	ID          string
	DisplayName string
	Roles       []string
}

// Handler runs commands against a ledger.
type Handler struct {
	ledger       *housecup.Ledger
	dir          leaderboard.Directory
	top          int
	requireHouse bool
	logger       *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithDirectory sets the directory used to name members in the standings
// (default: member ids).
func WithDirectory(dir leaderboard.Directory) Option {
	return func(h *Handler) { h.dir = dir }
}

// WithTop sets how many members the standings show.
func WithTop(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.top = n
		}
	}
}

// WithRequireHouse controls whether members without a house may receive
// points (default: true, they may not).
func WithRequireHouse(require bool) Option {
	return func(h *Handler) { h.requireHouse = require }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// NewHandler creates a Handler over l.
func NewHandler(l *housecup.Ledger, opts ...Option) *Handler {
	h := &Handler{
		ledger:       l,
		dir:          leaderboard.IDs,
		top:          DefaultTop,
		requireHouse: true,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ParseAmount parses a command amount. Only whole numbers are accepted.
func ParseAmount(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", housecup.ErrInvalidAmount, raw)
	}
	return n, nil
}

// Balance replies with the member's total.
func (h *Handler) Balance(m Member) string {
	return fmt.Sprintf("%s has %d points.", m.DisplayName, h.ledger.GetMemberPoints(m.ID))
}

// Points awards (or, for a negative amount, revokes) points. The reply is
// meant for the chat even when an error is returned.
func (h *Handler) Points(ctx context.Context, rawAmount string, m Member) (string, error) {
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return "The amount must be a whole number.", err
	}

	if reply, err := h.checkHouse(m); err != nil {
		return reply, err
	}

	if _, err := h.ledger.AwardPoints(ctx, m.ID, m.Roles, amount); err != nil {
		return h.failure(err), err
	}
	return awarded(amount, m), nil
}

// Activity awards the points configured for activity, under the same house
// rule as Points.
func (h *Handler) Activity(ctx context.Context, activity points.Activity, m Member) (string, error) {
	amount, ok := h.ledger.ActivityPoints(activity)
	if !ok {
		return fmt.Sprintf("Unknown activity %q.", activity), fmt.Errorf("%w: %q", housecup.ErrUnknownActivity, activity)
	}

	if reply, err := h.checkHouse(m); err != nil {
		return reply, err
	}

	if _, err := h.ledger.AwardActivity(ctx, m.ID, m.Roles, activity); err != nil {
		return h.failure(err), err
	}
	return awarded(amount, m), nil
}

func (h *Handler) checkHouse(m Member) (string, error) {
	if !h.requireHouse {
		return "", nil
	}
	if _, ok := h.ledger.Houses().Resolve(m.Roles); !ok {
		return fmt.Sprintf("%s is not in a house and cannot gain or lose points.", m.DisplayName), ErrNotInHouse
	}
	return "", nil
}

func awarded(amount int64, m Member) string {
	if amount > 0 {
		return fmt.Sprintf("✅ %d points were **added** to %s!", amount, m.DisplayName)
	}
	return fmt.Sprintf("❌ %d points were **removed** from %s!", -amount, m.DisplayName)
}

// Reset clears every total.
func (h *Handler) Reset(ctx context.Context) (string, error) {
	if _, err := h.ledger.ResetAll(ctx); err != nil {
		return h.failure(err), err
	}
	return "All points have been reset to zero!", nil
}

// Standings renders the member ranking and the house standings as two
// messages.
func (h *Handler) Standings() (members, houses string) {
	members = leaderboard.RenderMembers(h.ledger.TopMembers(h.top), h.dir)
	houses = leaderboard.RenderHouses(h.ledger.HouseStandings())
	return members, houses
}

func (h *Handler) failure(err error) string {
	if housecup.IsPersistence(err) {
		return "The points could not be saved. Nothing was changed."
	}
	if errors.Is(err, housecup.ErrInvalidInput) {
		return "That member cannot receive points. Nothing was changed."
	}
	if errors.Is(err, housecup.ErrInvalidAmount) {
		return "That amount would take a total out of range. Nothing was changed."
	}
	h.logger.Error("command failed", "error", err)
	return "Something went wrong. Nothing was changed."
}
