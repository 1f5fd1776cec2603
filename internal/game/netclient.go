package game

import (
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// Wire format for server lifecycle frames. The engine's contract is the bus
// events these decode into; the JSON shapes live only here.

type wireSenses struct {
	Visible []string `json:"visible"`
	Seen    []string `json:"seen"`
}

type wireEntity struct {
	ID         string                `json:"id"`
	X          int                   `json:"x"`
	Y          int                   `json:"y"`
	Direction  int                   `json:"direction"`
	PathSenses map[string]wireSenses `json:"pathSenses,omitempty"`
}

type serverFrame struct {
	Type       string      `json:"type"`
	EntityID   string      `json:"entityId,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	AttackerID string      `json:"attackerId,omitempty"`
	TargetID   string      `json:"targetId,omitempty"`
	Outcome    string      `json:"outcome,omitempty"`
	Entity     *wireEntity `json:"entity,omitempty"`
	Senses     *wireSenses `json:"senses,omitempty"`
}

// NetClient listens to the authoritative server over a websocket and
// republishes its frames as bus events. The read loop runs on its own
// goroutine; every decoded frame is posted to the mailbox so the game loop
// applies it single-threaded.
type NetClient struct {
	conn  *websocket.Conn
	bus   *Bus
	store *Store
	mail  *Mailbox
	log   *SimLog
	done  chan struct{}
}

// DialServer connects and returns a client ready to Listen.
func DialServer(url string, bus *Bus, store *Store, mail *Mailbox, log *SimLog) (*NetClient, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &NetClient{
		conn:  conn,
		bus:   bus,
		store: store,
		mail:  mail,
		log:   log,
		done:  make(chan struct{}),
	}, nil
}

// Listen reads frames until the connection drops. Run on its own goroutine.
func (c *NetClient) Listen() {
	defer close(c.done)
	for {
		var frame serverFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			c.mail.Post(func() {
				c.log.Warn("--", "net_closed", err.Error())
			})
			return
		}
		f := frame
		c.mail.Post(func() { c.apply(&f) })
	}
}

// Close shuts the connection down and waits for the read loop to exit.
func (c *NetClient) Close() error {
	err := c.conn.Close()
	select {
	case <-c.done:
	case <-time.After(time.Second):
	}
	return err
}

// apply translates one frame into store writes and bus events. Runs on the
// game loop via the mailbox.
func (c *NetClient) apply(f *serverFrame) {
	c.log.AddVerbose(f.EntityID, "net", "frame", f.Type, 0)
	switch f.Type {
	case "move_adopted":
		c.bus.Publish(EventMovementAdopted, &MovementAdoptedPayload{
			EntityID: f.EntityID,
			Server:   decodeEntity(f.Entity),
			Time:     time.Now(),
		})

	case "move_rejected":
		c.bus.Publish(EventMovementRejected, &MovementRejectedPayload{
			EntityID: f.EntityID,
			Reason:   f.Reason,
		})

	case "attack_adopted":
		// Outcome metadata attaches to the store's attack record before the
		// adoption event fires; the impact frame reads it from there.
		if rec, ok := c.store.Attack(f.AttackerID); ok {
			rec.Outcome = decodeOutcome(f.Outcome)
		}
		c.bus.Publish(EventAttackAdopted, &AttackAdoptedPayload{
			AttackerID: f.AttackerID,
			TargetID:   f.TargetID,
		})

	case "attack_rejected":
		c.bus.Publish(EventAttackRejected, &AttackRejectedPayload{
			AttackerID: f.AttackerID,
			TargetID:   f.TargetID,
			Reason:     f.Reason,
		})

	case "senses":
		if f.Senses != nil {
			c.store.SetSenses(f.EntityID, decodeSenses(*f.Senses))
		}

	case "entity":
		if f.Entity != nil {
			c.store.SetPosition(f.Entity.ID, GridPos{X: f.Entity.X, Y: f.Entity.Y})
			c.store.SetDirection(f.Entity.ID, Direction(f.Entity.Direction))
		}

	default:
		c.log.Warn("--", "net_unknown_frame", f.Type)
	}
}

func decodeEntity(w *wireEntity) *EntitySnapshot {
	if w == nil {
		return nil
	}
	snap := &EntitySnapshot{
		ID:        w.ID,
		Position:  GridPos{X: w.X, Y: w.Y},
		Direction: Direction(w.Direction),
	}
	if len(w.PathSenses) > 0 {
		snap.PathSenses = make(map[string]SensesSnapshot, len(w.PathSenses))
		for key, ws := range w.PathSenses {
			snap.PathSenses[key] = decodeSenses(ws)
		}
	}
	return snap
}

func decodeSenses(w wireSenses) SensesSnapshot {
	s := SensesSnapshot{Visible: make(map[string]struct{}, len(w.Visible))}
	for _, key := range w.Visible {
		s.Visible[key] = struct{}{}
	}
	s.Seen = append(s.Seen, w.Seen...)
	return s
}

func decodeOutcome(s string) AttackOutcome {
	switch s {
	case "hit":
		return OutcomeHit
	case "crit":
		return OutcomeCrit
	case "miss":
		return OutcomeMiss
	default:
		return OutcomeUnknown
	}
}
