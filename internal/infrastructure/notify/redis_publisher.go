// Package notify publica avisos de transición de misiones hacia Redis.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/viaticos-api/internal/application/approval"
)

var _ approval.Notifier = (*RedisPublisher)(nil)

// EventTransition tipo de evento publicado.
const EventTransition = "mision.transicion"

// Publisher lo que se usa de *redis.Client.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Event cuerpo JSON del aviso.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"tipo"`
	MissionID     int64     `json:"mision_id"`
	RequestNumber string    `json:"numero_solicitud"`
	Action        string    `json:"accion"`
	FromState     string    `json:"estado_anterior"`
	NewState      string    `json:"estado_nuevo"`
	BeneficiaryID string    `json:"cedula_beneficiario"`
	PrincipalID   string    `json:"usuario_id"`
	OccurredAt    time.Time `json:"fecha"`
}

// RedisPublisher Notifier sobre PUBLISH. Los fallos solo se registran.
type RedisPublisher struct {
	client  Publisher
	channel string
	timeout time.Duration
	log     zerolog.Logger
	newID   func() string
}

// NewRedisPublisher construye el publicador sobre el canal indicado.
func NewRedisPublisher(client Publisher, channel string, log zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		timeout: 2 * time.Second,
		log:     log,
		newID:   func() string { return uuid.NewString() },
	}
}

// NewClient cliente Redis con timeouts cortos.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		MaxRetries:   1,
	})
}

// MissionTransitioned publica el aviso. Nunca devuelve error ni bloquea más que el timeout.
func (p *RedisPublisher) MissionTransitioned(ctx context.Context, n approval.TransitionNotice) {
	ev := Event{
		ID:            p.newID(),
		Type:          EventTransition,
		MissionID:     n.MissionID,
		RequestNumber: n.RequestNumber,
		Action:        string(n.Action),
		FromState:     string(n.FromState),
		NewState:      string(n.NewState),
		BeneficiaryID: n.BeneficiaryID,
		PrincipalID:   n.PrincipalID,
		OccurredAt:    n.OccurredAt,
	}
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn().Err(err).Int64("mission_id", n.MissionID).Msg("no se pudo serializar el aviso")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		p.log.Warn().Err(err).
			Str("event_id", ev.ID).
			Int64("mission_id", n.MissionID).
			Str("channel", p.channel).
			Msg("no se pudo publicar el aviso de transición")
		return
	}
	p.log.Debug().Str("event_id", ev.ID).Int64("mission_id", n.MissionID).Msg("aviso publicado")
}
