// Package services holds the client's room services: the access gate, the
// live stream subscription and the message mutation protocol.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/roomchat/internal/client/client"
	"github.com/dmitrijs2005/roomchat/internal/client/models"
	"github.com/dmitrijs2005/roomchat/internal/cryptox"
	"github.com/dmitrijs2005/roomchat/internal/logging"
)

type GateState int

const (
	GatePending GateState = iota
	GateAllowed
	GateDenied
)

func (s GateState) String() string {
	switch s {
	case GatePending:
		return "pending"
	case GateAllowed:
		return "allowed"
	case GateDenied:
		return "denied"
	default:
		return "unknown"
	}
}

const (
	ReasonNoRoom           = "no room specified"
	ReasonWrongPasskey     = "protected room, wrong/missing passkey"
	ReasonValidationFailed = "validation failed, retry"
)

// Decision is the outcome of resolving room access.
type Decision struct {
	State  GateState
	Reason string
}

func Pending() Decision { return Decision{State: GatePending} }

func Allowed() Decision { return Decision{State: GateAllowed} }

func Denied(reason string) Decision { return Decision{State: GateDenied, Reason: reason} }

func (d Decision) Allowed() bool { return d.State == GateAllowed }

// Err returns an *AccessError for denied decisions and nil otherwise.
func (d Decision) Err() error {
	if d.State != GateDenied {
		return nil
	}
	return &AccessError{Reason: d.Reason}
}

// Gate decides whether the session may use a room.
//
// Contract:
//   - an empty room ID is denied without contacting the store;
//   - an absent room is created with the supplied passkey and its creator is
//     allowed;
//   - a room without passkey allows anyone;
//   - a protected room allows only a matching passkey;
//   - transport failures deny with a retry hint.
//
// Resolving the same inputs again never re-creates the room.
type Gate interface {
	Resolve(ctx context.Context, roomID, passkey string) Decision
}

type gate struct {
	client client.Client
	logger logging.Logger
}

func NewGate(c client.Client, logger logging.Logger) Gate {
	return &gate{client: c, logger: logger.With("module", "gate")}
}

func (g *gate) Resolve(ctx context.Context, roomID, passkey string) Decision {
	if roomID == "" {
		return Denied(ReasonNoRoom)
	}

	room, err := g.client.ReadRoom(ctx, roomID)
	switch {
	case errors.Is(err, client.ErrNotFound):
		stored, created, err := g.create(ctx, roomID, passkey)
		if err != nil {
			g.logger.Warn(ctx, "room create failed", "room", roomID, "error", err)
			return Denied(ReasonValidationFailed)
		}
		if created {
			g.logger.Info(ctx, "room created", "room", roomID, "protected", stored.HasPasskey)
			return Allowed()
		}
		// Someone else created it between our read and create.
		room = stored
	case err != nil:
		g.logger.Warn(ctx, "room read failed", "room", roomID, "error", err)
		return Denied(ReasonValidationFailed)
	}

	return evaluate(room, passkey)
}

func (g *gate) create(ctx context.Context, roomID, passkey string) (models.Room, bool, error) {
	room := models.Room{ID: roomID, HasPasskey: passkey != ""}
	if room.HasPasskey {
		digest, salt, err := cryptox.NewPasskeyDigest(passkey)
		if err != nil {
			return models.Room{}, false, err
		}
		room.PasskeyHash = digest
		room.PasskeySalt = salt
	}
	return g.client.CreateRoomIfAbsent(ctx, room)
}

func evaluate(room models.Room, passkey string) Decision {
	if !room.HasPasskey {
		return Allowed()
	}
	if cryptox.VerifyPasskey(passkey, room.PasskeySalt, room.PasskeyHash) {
		return Allowed()
	}
	return Denied(ReasonWrongPasskey)
}
