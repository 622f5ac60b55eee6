package duel

import (
	"errors"
)

var (
	ErrDuelActive        = errors.New("duel already active in channel")
	ErrSelfDuel          = errors.New("cannot duel yourself")
	ErrNoDuel            = errors.New("no duel in channel")
	ErrDuelOver          = errors.New("duel has ended")
	ErrNotIdle           = errors.New("duel is not idle")
	ErrNotParticipant    = errors.New("not a participant")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrOnlyVictor        = errors.New("only the victor can choose")
	ErrOutOfRange        = errors.New("target out of range")
	ErrNoGrenades        = errors.New("no grenades")
	ErrCannotGrapple     = errors.New("grapple needs close range")
	ErrUnknownAction     = errors.New("unknown action")
	ErrActionUnavailable = errors.New("action unavailable")
)

// unavailable wraps ErrActionUnavailable with a player-facing reason.
type unavailable struct {
	reason string
}

func (u *unavailable) Error() string { return "action unavailable: " + u.reason }

func (u *unavailable) Unwrap() error { return ErrActionUnavailable }

func unavailableErr(reason string) error {
	return &unavailable{reason: reason}
}

// Message is the ephemeral reply shown to a player whose action was refused.
func Message(err error) string {
	var u *unavailable
	switch {
	case errors.As(err, &u):
		return u.reason
	case errors.Is(err, ErrDuelActive):
		return "There’s already an active duel in this channel. Use `/duel reset` first."
	case errors.Is(err, ErrSelfDuel):
		return "You can’t duel yourself. Try `/duel ai` to test against a bot."
	case errors.Is(err, ErrNoDuel):
		return "No duel in this channel."
	case errors.Is(err, ErrDuelOver):
		return "Duel has ended."
	case errors.Is(err, ErrNotParticipant):
		return "You are not part of this duel."
	case errors.Is(err, ErrNotYourTurn):
		return "Not your turn."
	case errors.Is(err, ErrOnlyVictor):
		return "Only the victor can choose."
	case errors.Is(err, ErrOutOfRange):
		return "❌ Target is **out of range**."
	case errors.Is(err, ErrNoGrenades):
		return "You fumble for a grenade, but have none."
	case errors.Is(err, ErrCannotGrapple):
		return "You can only start a grapple at **Close** range and when not already grappling."
	case errors.Is(err, ErrUnknownAction):
		return "That button no longer does anything."
	case errors.Is(err, ErrActionUnavailable):
		return "That action is unavailable right now."
	}
	return "Something went wrong."
}
