package notify

import (
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects consumed by the external notification subsystem.
const (
	SubjectGameCreated  = "fibbler.game.created"
	SubjectGameFinished = "fibbler.game.finished"
	SubjectGameAborted  = "fibbler.game.aborted"
)

// GameNotice is the lifecycle message published for downstream consumers
// (notification fan-out, stats pipelines). Fire and forget.
type GameNotice struct {
	GameID   string    `json:"game_id"`
	Name     string    `json:"name"`
	Host     string    `json:"host"`
	Occurred time.Time `json:"occurred"`
}

// Notifier publishes game lifecycle notices to NATS. A nil Notifier is a
// valid no-op so the server runs without a broker.
type Notifier struct {
	conn *nats.Conn
}

// Connect dials the broker; returns nil (disabled) when url is empty.
func Connect(url string) (*Notifier, error) {
	if url == "" {
		log.Println("NATS_URL not set, game notifications disabled")
		return nil, nil
	}
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS at %s", url)
	return &Notifier{conn: conn}, nil
}

func (n *Notifier) Publish(subject string, notice GameNotice) {
	if n == nil || n.conn == nil {
		return
	}
	notice.Occurred = time.Now().UTC()
	data, err := json.Marshal(notice)
	if err != nil {
		log.Printf("[NOTIFY-ERROR] marshaling notice: %v", err)
		return
	}
	if err := n.conn.Publish(subject, data); err != nil {
		log.Printf("[NOTIFY-ERROR] publishing %s: %v", subject, err)
	}
}

func (n *Notifier) Close() {
	if n != nil && n.conn != nil {
		n.conn.Close()
	}
}
